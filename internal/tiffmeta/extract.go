package tiffmeta

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Issue stages. Container issues cover file and directory-chain problems;
// OME issues cover the structured-metadata XML only.
const (
	StageContainer = "container"
	StageOME       = "ome"
)

// Field is one extracted key/value pair. Fields keep insertion order so the
// display surface can show them as gathered.
type Field struct {
	Key   string
	Value string
}

// Issue records a failure that was contained during extraction.
type Issue struct {
	Stage   string
	Message string
}

// Result carries the partial metadata mapping together with every issue
// encountered while producing it.
type Result struct {
	Fields []Field
	Issues []Issue
}

func (r *Result) add(key, value string) {
	r.Fields = append(r.Fields, Field{Key: key, Value: value})
}

func (r *Result) issue(stage string, err error) {
	r.Issues = append(r.Issues, Issue{Stage: stage, Message: err.Error()})
}

// Lookup returns the first field with the given key.
func (r Result) Lookup(key string) (string, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Map flattens the result for display. Issues surface as the historical
// "error" and "ome_parse_error" keys.
func (r Result) Map() map[string]string {
	m := make(map[string]string, len(r.Fields)+len(r.Issues))
	for _, f := range r.Fields {
		m[f.Key] = f.Value
	}
	for _, issue := range r.Issues {
		switch issue.Stage {
		case StageOME:
			m["ome_parse_error"] = issue.Message
		default:
			m["error"] = issue.Message
		}
	}
	return m
}

// Extract reads best-effort metadata for one image file. It never fails past
// this boundary: any internal problem becomes an issue on the result and
// whatever was already gathered is kept.
func Extract(path string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res.issue(StageContainer, fmt.Errorf("extraction panic: %v", r))
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		res.issue(StageContainer, err)
		return res
	}
	defer f.Close()

	t, first, err := openTIFF(f)
	if err != nil {
		res.issue(StageContainer, err)
		return res
	}

	pages, firstDir, err := t.walk(first)
	if err != nil {
		res.issue(StageContainer, err)
		return res
	}

	res.add("pages", strconv.Itoa(pages))
	res.add("dtype", t.dtype(firstDir))

	description := t.ascii(firstDir, tagImageDescription)
	if !strings.HasPrefix(strings.TrimSpace(description), "<?xml") {
		return res
	}

	fields, err := parseOME(description)
	if err != nil {
		// Container fields stay; only the XML stage failed.
		res.issue(StageOME, err)
		return res
	}
	res.Fields = append(res.Fields, fields...)
	return res
}
