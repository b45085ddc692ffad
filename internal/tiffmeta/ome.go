package tiffmeta

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

// OME-XML subset: pixel geometry of the first image plus the structured
// annotations that carry free-form sample and acquisition attributes.

type omeDocument struct {
	XMLName     xml.Name       `xml:"OME"`
	Images      []omeImage     `xml:"Image"`
	Annotations omeAnnotations `xml:"StructuredAnnotations"`
}

type omeImage struct {
	Name   string    `xml:"Name,attr"`
	Pixels omePixels `xml:"Pixels"`
}

type omePixels struct {
	SizeX          string       `xml:"SizeX,attr"`
	SizeY          string       `xml:"SizeY,attr"`
	SizeZ          string       `xml:"SizeZ,attr"`
	SizeC          string       `xml:"SizeC,attr"`
	SizeT          string       `xml:"SizeT,attr"`
	PhysicalSizeX  string       `xml:"PhysicalSizeX,attr"`
	PhysicalSizeY  string       `xml:"PhysicalSizeY,attr"`
	PhysicalSizeZ  string       `xml:"PhysicalSizeZ,attr"`
	DimensionOrder string       `xml:"DimensionOrder,attr"`
	Type           string       `xml:"Type,attr"`
	Channels       []omeChannel `xml:"Channel"`
}

type omeChannel struct {
	Name string `xml:"Name,attr"`
}

type omeAnnotations struct {
	MapAnnotations []omeMapAnnotation `xml:"MapAnnotation"`
	XMLAnnotations []omeXMLAnnotation `xml:"XMLAnnotation"`
}

type omeMapAnnotation struct {
	Pairs []omeMapPair `xml:"Value>M"`
}

type omeMapPair struct {
	Key   string `xml:"K,attr"`
	Value string `xml:",chardata"`
}

type omeXMLAnnotation struct {
	Value string `xml:"Value"`
}

// parseOME extracts the pixel geometry and custom key/value annotations from
// an OME-XML description.
func parseOME(text string) ([]Field, error) {
	var doc omeDocument
	if err := xml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("parse OME-XML: %w", err)
	}
	if len(doc.Images) == 0 {
		return nil, nil
	}

	pixels := doc.Images[0].Pixels
	var fields []Field
	add := func(key, value string) {
		fields = append(fields, Field{Key: key, Value: value})
	}

	add("SizeX", pixels.SizeX)
	add("SizeY", pixels.SizeY)
	add("SizeZ", pixels.SizeZ)
	if pixels.PhysicalSizeX != "" {
		add("VoxelSizeX", pixels.PhysicalSizeX)
	}
	if pixels.PhysicalSizeY != "" {
		add("VoxelSizeY", pixels.PhysicalSizeY)
	}
	if pixels.PhysicalSizeZ != "" {
		add("VoxelSizeZ", pixels.PhysicalSizeZ)
	}
	add("DimensionOrder", pixels.DimensionOrder)
	add("SizeC", pixels.SizeC)
	add("SizeT", pixels.SizeT)
	add("PixelType", pixels.Type)

	names := make([]string, len(pixels.Channels))
	for i, channel := range pixels.Channels {
		if channel.Name != "" {
			names[i] = channel.Name
		} else {
			names[i] = fmt.Sprintf("Ch%d", i)
		}
	}
	add("Channels", strings.Join(names, ", "))

	for _, annotation := range doc.Annotations.MapAnnotations {
		for _, pair := range annotation.Pairs {
			add(pair.Key, strings.TrimSpace(pair.Value))
		}
	}
	for _, annotation := range doc.Annotations.XMLAnnotations {
		fields = append(fields, jsonFields(annotation.Value)...)
	}

	return fields, nil
}

// jsonFields decodes an XMLAnnotation payload that happens to be a JSON
// object. Anything else is ignored, matching the historical behavior.
func jsonFields(payload string) []Field {
	trimmed := strings.TrimSpace(payload)
	if !strings.HasPrefix(trimmed, "{") {
		return nil
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return nil
	}
	keys := make([]string, 0, len(decoded))
	for key := range decoded {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fields := make([]Field, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, Field{Key: key, Value: fmt.Sprint(decoded[key])})
	}
	return fields
}
