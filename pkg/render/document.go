// Copyright (c) 2026, Sysdiag Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package render

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/eraxe/sysdiag/pkg/errors"
	"github.com/eraxe/sysdiag/pkg/report"
)

// documentEmitter rebuilds the tree through the shared walk and hands
// it to a marshal function at the end. Both the JSON and the YAML
// backends use it, so the two documents always share one shape.
type documentEmitter struct {
	doc     report.Tree
	marshal func(any) ([]byte, error)
}

func newDocumentEmitter(marshal func(any) ([]byte, error)) *documentEmitter {
	return &documentEmitter{marshal: marshal}
}

func (e *documentEmitter) Begin(t *report.Tree) error {
	e.doc.Header = t.Header
	e.doc.Categories = make([]report.Category, 0, len(t.Categories))
	return nil
}

func (e *documentEmitter) EmitCategory(c report.Category) error {
	e.doc.Categories = append(e.doc.Categories, report.Category{Name: c.Name})
	return nil
}

func (e *documentEmitter) EmitModule(m report.ModuleResult) error {
	cat := &e.doc.Categories[len(e.doc.Categories)-1]
	cat.Modules = append(cat.Modules, report.ModuleResult{
		ID:     m.ID,
		Title:  m.Title,
		Status: m.Status,
		Reason: m.Reason,
	})
	return nil
}

func (e *documentEmitter) EmitSubsection(s report.Subsection) error {
	cat := &e.doc.Categories[len(e.doc.Categories)-1]
	mod := &cat.Modules[len(cat.Modules)-1]
	mod.Subsections = append(mod.Subsections, s)
	return nil
}

func (e *documentEmitter) End() ([]byte, error) {
	data, err := e.marshal(&e.doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, "failed to marshal report", err)
	}
	return data, nil
}

func marshalJSON(doc any) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func marshalYAML(doc any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
