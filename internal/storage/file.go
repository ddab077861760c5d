package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FileSource reads rules from a YAML document. JSON files work as well
// since the decoder accepts JSON syntax.
type FileSource struct {
	Path string
}

type ruleFile struct {
	Rules []RuleRow `yaml:"rules"`
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) Name() string { return "file:" + f.Path }

func (f *FileSource) LoadRules(_ context.Context) ([]RuleRow, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open rules file %s: %w", f.Path, err)
	}
	defer fh.Close()

	var doc ruleFile
	dec := yaml.NewDecoder(fh)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode rules file %s: %w", f.Path, err)
	}
	return doc.Rules, nil
}
