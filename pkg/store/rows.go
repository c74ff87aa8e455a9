package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/deskgrid/pkg/errors"
	"github.com/matzehuels/deskgrid/pkg/layout"
)

// ToRow flattens an item. The returned row's Container is the item's own;
// the synchronizer overrides it for folder members.
func ToRow(it layout.Item) Row {
	r := Row{
		Container:   it.Container,
		TypeID:      int(it.Kind()),
		Area:        it.Area.String(),
		Page:        it.Page,
		GridRow:     it.Row,
		GridColumn:  it.Column,
		KeyName:     it.Key(),
		BadgeNumber: it.Badge,
	}
	switch p := it.Payload.(type) {
	case layout.App:
		r.BundleName, r.AbilityName, r.ModuleName = p.Bundle, p.Ability, p.Module
	case layout.Widget:
		r.BundleName, r.AbilityName, r.ModuleName = p.Bundle, p.Ability, p.Module
		r.CardID, r.Dimension = p.CardID, p.Dimension
	case layout.Folder:
		r.FolderID, r.FolderName = p.ID, p.Name
	}
	return r
}

// ParseArea parses the "W,H" area encoding.
func ParseArea(s string) (layout.Area, error) {
	w, h, ok := strings.Cut(s, ",")
	if !ok {
		return layout.Area{}, fmt.Errorf("area %q: missing comma", s)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return layout.Area{}, fmt.Errorf("area %q: width: %w", s, err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return layout.Area{}, fmt.Errorf("area %q: height: %w", s, err)
	}
	if width < 0 || height < 0 {
		return layout.Area{}, fmt.Errorf("area %q: negative span", s)
	}
	return layout.Area{Width: width, Height: height}, nil
}

// FromRow rebuilds an item from a stored row read against a rows×cols grid.
//
// A row with an unknown type id is an error. A row whose area cannot be
// parsed, or whose coordinates are negative or fall outside the grid, is
// still returned, with a zero area and its coordinates pulled into range;
// malformed then describes what was wrong. A zero-area item never collides
// with anything.
func FromRow(r Row, rows, cols int) (it layout.Item, malformed string, err error) {
	switch layout.Kind(r.TypeID) {
	case layout.KindApp:
		it.Payload = layout.App{Bundle: r.BundleName, Ability: r.AbilityName, Module: r.ModuleName}
	case layout.KindWidget:
		it.Payload = layout.Widget{
			CardID:    r.CardID,
			Bundle:    r.BundleName,
			Ability:   r.AbilityName,
			Module:    r.ModuleName,
			Dimension: r.Dimension,
		}
	case layout.KindFolder:
		if r.FolderID == "" {
			return it, "", errors.New(errors.ErrCodeInvalidInput, "row %d: folder without folder_id", r.ID)
		}
		it.Payload = layout.Folder{ID: r.FolderID, Name: r.FolderName}
	default:
		return it, "", errors.New(errors.ErrCodeInvalidInput, "row %d: unknown type_id %d", r.ID, r.TypeID)
	}

	it.Container = r.Container
	it.Page, it.Row, it.Column = r.Page, r.GridRow, r.GridColumn
	it.Badge = r.BadgeNumber

	area, perr := ParseArea(r.Area)
	switch {
	case perr != nil:
		malformed = perr.Error()
	case it.Page < 0 || it.Row < 0 || it.Column < 0:
		malformed = fmt.Sprintf("negative position p%d r%d c%d", it.Page, it.Row, it.Column)
	case r.Container == layout.TopLevel && (it.Row+area.Height > rows || it.Column+area.Width > cols):
		malformed = fmt.Sprintf("span %s at r%d c%d outside %dx%d grid", area, it.Row, it.Column, rows, cols)
	default:
		it.Area = area
		return it, "", nil
	}

	it.Area = layout.Area{}
	it.Page = max(it.Page, 0)
	it.Row = clamp(it.Row, rows)
	it.Column = clamp(it.Column, cols)
	return it, malformed, nil
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if n > 0 && v >= n {
		return n - 1
	}
	return v
}
