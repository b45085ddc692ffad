package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"octlabel/internal/discover"
	"octlabel/internal/session"
	"octlabel/internal/store"
	"octlabel/internal/testsupport"
)

func TestHumanLabel(t *testing.T) {
	cases := map[string]string{
		"tumor":                    "Tumor",
		"blood vessel":             "Blood Vessel",
		"missing_sheath":           "Missing Sheath",
		"CLINICAL_normal":          "Normal",
		"CLINICAL_normal_adjacent": "Normal Adjacent",
	}
	for in, want := range cases {
		if got := humanLabel(in); got != want {
			t.Errorf("humanLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveLabel(t *testing.T) {
	labels := []string{"tumor", "dense", "blood vessel"}

	if got, err := resolveLabel(labels, "2"); err != nil || got != "dense" {
		t.Errorf("resolveLabel(2) = %q, %v", got, err)
	}
	if got, err := resolveLabel(labels, "Blood Vessel"); err != nil || got != "blood vessel" {
		t.Errorf("resolveLabel(name) = %q, %v", got, err)
	}
	if _, err := resolveLabel(labels, "0"); err == nil {
		t.Error("index 0 accepted")
	}
	if _, err := resolveLabel(labels, "4"); err == nil {
		t.Error("out-of-range index accepted")
	}
	if _, err := resolveLabel(labels, "stroma"); err == nil {
		t.Error("unknown name accepted")
	}
	if _, err := resolveLabel(labels, ""); err == nil {
		t.Error("empty argument accepted")
	}
}

func TestRenderRowsNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	renderRows(&buf, []string{"#", "Folder"}, [][]string{{"1", "scans/A"}})

	want := "#\tFolder\n1\tscans/A\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestAnnotateLoopCommitsAndQuits(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTIFF(t, filepath.Join(root, "A", "001.tif"), 1, "")
	testsupport.WriteTIFF(t, filepath.Join(root, "B", "001.tif"), 1, "")

	cfg := testsupport.NewConfig(t)
	folders, err := discover.New(cfg, nil).Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	st, err := store.Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sess, err := session.New(cfg, folders, st, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	script := strings.Join([]string{
		"t 1", // toggle tumor on
		"c needs review",
		"n", // commit folder A
		"q", // leave folder B untouched
	}, "\n") + "\n"

	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(script))
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := runAnnotateLoop(cmd, cfg, sess); err != nil {
		t.Fatalf("loop: %v", err)
	}

	key := filepath.Join(filepath.Base(root), "A")
	rec, ok := st.Get(key)
	if !ok {
		t.Fatalf("no record for %q after commit (keys %v)", key, st.Keys())
	}
	if rec.Tissue["tumor"] != store.TriTrue {
		t.Errorf("tumor = %v, want true", rec.Tissue["tumor"])
	}
	if rec.Comment != "needs review" {
		t.Errorf("comment = %q", rec.Comment)
	}
	if st.Len() != 1 {
		t.Errorf("records = %d, want 1", st.Len())
	}
}

func TestAnnotateLoopUnknownCommand(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTIFF(t, filepath.Join(root, "A", "001.tif"), 1, "")

	cfg := testsupport.NewConfig(t)
	folders, err := discover.New(cfg, nil).Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	st, err := store.Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sess, err := session.New(cfg, folders, st, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("frobnicate\nq\n"))
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := runAnnotateLoop(cmd, cfg, sess); err != nil {
		t.Fatalf("loop: %v", err)
	}
	if !strings.Contains(out.String(), `unknown command "frobnicate"`) {
		t.Fatalf("missing unknown-command notice in:\n%s", out.String())
	}
	if st.Len() != 0 {
		t.Error("unknown command caused a write")
	}
}
