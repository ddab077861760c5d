package storage

import "context"

// RuleRow is one raw rule record as written by an operator. The engine
// validates and compiles it; nothing here is checked.
type RuleRow struct {
	Role     string   `yaml:"role"`
	Addr     string   `yaml:"addr"`
	Mask     string   `yaml:"mask"`
	Country  string   `yaml:"country"`
	Strategy string   `yaml:"strategy"`
	Images   []string `yaml:"images"`
}

// RuleSource delivers rule records in evaluation order.
type RuleSource interface {
	LoadRules(ctx context.Context) ([]RuleRow, error)
	Name() string
}
