// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/kr/pretty"
	"gopkg.in/yaml.v3"

	"github.com/ulikunitz/phrase"
	"github.com/ulikunitz/phrase/syntax"
)

// yamlSection is the YAML representation of a section.
type yamlSection struct {
	Index   int        `yaml:"index"`
	Rules   []string   `yaml:"rules"`
	Decoder *yamlLayer `yaml:"decoder"`
}

// yamlLayer is the YAML representation of the automaton. Branch keys are
// strings, because YAML has no character type.
type yamlLayer struct {
	Rule   *int                  `yaml:"rule,omitempty"`
	Branch map[string]*yamlLayer `yaml:"branch,omitempty"`
}

// ruleString renders a rule in grammar notation; references use the index
// of the section.
func ruleString(rule []phrase.Segment) string {
	var sb strings.Builder
	for _, seg := range rule {
		if seg.Kind == syntax.Use {
			fmt.Fprintf(&sb, "{#%d}", seg.Index)
			continue
		}
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

func newYAMLLayer(l *phrase.Layer) *yamlLayer {
	if l.IsCertain() {
		rule := l.Rule
		return &yamlLayer{Rule: &rule}
	}
	y := &yamlLayer{Branch: make(map[string]*yamlLayer, len(l.Branch))}
	for r, c := range l.Branch {
		y.Branch[string(r)] = newYAMLLayer(c)
	}
	return y
}

// writeYAML writes the table as YAML document.
func writeYAML(w io.Writer, t *phrase.Table) error {
	secs := make([]yamlSection, len(t.Sections))
	for i, sec := range t.Sections {
		rules := make([]string, len(sec.Rules))
		for k, rule := range sec.Rules {
			rules[k] = ruleString(rule)
		}
		secs[i] = yamlSection{
			Index:   i,
			Rules:   rules,
			Decoder: newYAMLLayer(sec.Decoder),
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(secs); err != nil {
		return err
	}
	return enc.Close()
}

func dumpCmd(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := newFlagSet("dump")
	var (
		help    = fs.BoolP("help", "h", false, "")
		lib     = fs.StringP("lib", "l", "", "")
		useYAML = fs.BoolP("yaml", "y", false, "")
		verbose = fs.BoolP("verbose", "v", false, "")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *help {
		usage(stdout)
		return nil
	}
	t, err := loadTable(*lib, verboseLogger(*verbose))
	if err != nil {
		return err
	}
	if *useYAML {
		return writeYAML(stdout, t)
	}
	_, err = pretty.Fprintf(stdout, "%# v\n", t)
	return err
}
