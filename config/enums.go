package config

import "fmt"

// SourceKind specifies where post content comes from.
type SourceKind int

const (
	SourceKindDir SourceKind = iota // directory with per-post JSON block trees
	SourceKindWXR                   // WordPress eXtended RSS export file
)

var sourceKindNames = map[SourceKind]string{
	SourceKindDir: "dir",
	SourceKindWXR: "wxr",
}

func (s SourceKind) String() string {
	if name, ok := sourceKindNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SourceKind(%d)", int(s))
}

// SourceKindNames returns valid configuration values for content source.
func SourceKindNames() []string {
	return []string{"dir", "wxr"}
}

// ParseSourceKind converts configuration string to SourceKind.
func ParseSourceKind(name string) (SourceKind, error) {
	for k, v := range sourceKindNames {
		if v == name {
			return k, nil
		}
	}
	return SourceKindDir, fmt.Errorf("%s is not a valid content source", name)
}

func (s SourceKind) MarshalYAML() (any, error) {
	return s.String(), nil
}

func (s *SourceKind) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	kind, err := ParseSourceKind(name)
	if err != nil {
		return err
	}
	*s = kind
	return nil
}
