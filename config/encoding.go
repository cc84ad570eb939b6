package config

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// LookupEncoding finds a charmap by its display name, case-insensitively.
// Empty and "utf-8" mean no decoding and return nil.
func LookupEncoding(name string) (*charmap.Charmap, error) {
	name = strings.TrimSpace(name)
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if strings.EqualFold(cm.String(), name) {
				return cm, nil
			}
		}
	}
	return nil, errors.Errorf("Failed to find encoding %q, known encodings: %s", name, strings.Join(ListEncodings(), ", "))
}

func ListEncodings() []string {
	list := []string{"utf-8"}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}
