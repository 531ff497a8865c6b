// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"fmt"

	"github.com/pdiddy/proposal-engine/internal/proposal"
	"github.com/pdiddy/proposal-engine/pkg/types"
)

type generateRequest struct {
	Title         string        `json:"title"`
	Details       string        `json:"details"`
	AcademicLevel string        `json:"academicLevel"`
	Country       string        `json:"country"`
	MaterialFiles []materialRef `json:"materialFiles"`
}

// materialRef is either a bare path string or {"filePath", "fileBizType"}.
type materialRef struct {
	Path string             `json:"filePath"`
	Kind types.MaterialKind `json:"fileBizType"`
}

func (m *materialRef) UnmarshalJSON(b []byte) error {
	var path string
	if err := json.Unmarshal(b, &path); err == nil {
		*m = materialRef{Path: path}
		return nil
	}
	type plain materialRef
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("material file must be a path or an object: %w", err)
	}
	*m = materialRef(p)
	return nil
}

func (g generateRequest) proposalRequest() types.ProposalRequest {
	return types.ProposalRequest{
		Title:         g.Title,
		Details:       g.Details,
		AcademicLevel: types.AcademicLevel(g.AcademicLevel),
		Country:       types.Country(g.Country),
	}
}

func (g generateRequest) materialFiles() []proposal.MaterialFile {
	files := make([]proposal.MaterialFile, 0, len(g.MaterialFiles))
	for _, m := range g.MaterialFiles {
		files = append(files, proposal.MaterialFile{Path: m.Path, Kind: m.Kind})
	}
	return files
}
