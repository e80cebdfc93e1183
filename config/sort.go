package config

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Sort is the listing order requested from reddit.
type Sort string

const (
	SortHot           Sort = "hot"
	SortNew           Sort = "new"
	SortTop           Sort = "top"
	SortControversial Sort = "controversial"
	SortRising        Sort = "rising"
)

// ParseSort is case-insensitive, anything it doesn't recognize is SortHot.
func ParseSort(s string) Sort {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new":
		return SortNew
	case "top":
		return SortTop
	case "controversial":
		return SortControversial
	case "rising":
		return SortRising
	default:
		return SortHot
	}
}

func (s Sort) String() string {
	if s == "" {
		return string(SortHot)
	}
	return string(s)
}

func (s Sort) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText is used by the TOML decoder.
func (s *Sort) UnmarshalText(b []byte) error {
	*s = ParseSort(string(b))
	return nil
}

// UnmarshalYAML never fails: a value that isn't a string becomes SortHot.
func (s *Sort) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		*s = SortHot
		return nil
	}
	*s = ParseSort(raw)
	return nil
}
