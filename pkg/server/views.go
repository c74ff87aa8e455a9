package server

import (
	"github.com/matzehuels/deskgrid/pkg/errors"
	"github.com/matzehuels/deskgrid/pkg/layout"
)

// ItemView is the JSON form of a layout item.
type ItemView struct {
	Key        string     `json:"key"`
	Kind       string     `json:"kind"`
	Page       int        `json:"page"`
	Row        int        `json:"row"`
	Column     int        `json:"column"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Badge      int        `json:"badge,omitempty"`
	Bundle     string     `json:"bundle,omitempty"`
	Ability    string     `json:"ability,omitempty"`
	Module     string     `json:"module,omitempty"`
	CardID     int64      `json:"card_id,omitempty"`
	Dimension  int        `json:"dimension,omitempty"`
	FolderName string     `json:"folder_name,omitempty"`
	Members    []ItemView `json:"members,omitempty"`
}

// LayoutView is the JSON form of the whole layout.
type LayoutView struct {
	Rows        int          `json:"rows"`
	Columns     int          `json:"columns"`
	PageCount   int          `json:"page_count"`
	CurrentPage int          `json:"current_page"`
	Stale       bool         `json:"stale"`
	Pages       [][]ItemView `json:"pages"`
}

// NewItemView converts it. members is only used for folders.
func NewItemView(it layout.Item, members []layout.Item) ItemView {
	v := ItemView{
		Key:    it.Key(),
		Kind:   it.Kind().String(),
		Page:   it.Page,
		Row:    it.Row,
		Column: it.Column,
		Width:  it.Area.Width,
		Height: it.Area.Height,
		Badge:  it.Badge,
	}
	switch p := it.Payload.(type) {
	case layout.App:
		v.Bundle, v.Ability, v.Module = p.Bundle, p.Ability, p.Module
	case layout.Widget:
		v.Bundle, v.Ability, v.Module = p.Bundle, p.Ability, p.Module
		v.CardID, v.Dimension = p.CardID, p.Dimension
	case layout.Folder:
		v.FolderName = p.Name
		for _, m := range members {
			v.Members = append(v.Members, NewItemView(m, nil))
		}
	}
	return v
}

// NewLayoutView renders a snapshot page by page.
func NewLayoutView(s *layout.Snapshot, current int, stale bool) LayoutView {
	v := LayoutView{
		Rows:        s.Rows,
		Columns:     s.Columns,
		PageCount:   s.PageCount,
		CurrentPage: current,
		Stale:       stale,
	}
	for _, page := range s.Pages() {
		views := make([]ItemView, 0, len(page))
		for _, it := range page {
			views = append(views, NewItemView(it, s.Folders[it.Key()]))
		}
		v.Pages = append(v.Pages, views)
	}
	return v
}

// PlaceRequest is the body of POST /v1/items.
type PlaceRequest struct {
	Kind      string `json:"kind"`
	Bundle    string `json:"bundle"`
	Ability   string `json:"ability"`
	Module    string `json:"module"`
	CardID    int64  `json:"card_id"`
	Dimension int    `json:"dimension"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Item builds the layout item to place.
func (r PlaceRequest) Item() (layout.Item, error) {
	kind := layout.KindApp
	if r.Kind != "" {
		k, err := layout.ParseKind(r.Kind)
		if err != nil {
			return layout.Item{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "%v", err)
		}
		kind = k
	}
	switch kind {
	case layout.KindApp:
		return layout.NewApp(r.Bundle, r.Ability, r.Module), nil
	case layout.KindWidget:
		w := layout.Widget{CardID: r.CardID, Bundle: r.Bundle, Ability: r.Ability, Module: r.Module, Dimension: r.Dimension}
		return layout.NewWidget(w, r.Width, r.Height), nil
	}
	return layout.Item{}, errUnplaceable
}

type positionRequest struct {
	Page   int `json:"page"`
	Row    int `json:"row"`
	Column int `json:"column"`
}

type gridRequest struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

type pageRequest struct {
	Page int `json:"page"`
}

type folderRequest struct {
	Name string   `json:"name"`
	Keys []string `json:"keys"`
}

type memberRequest struct {
	Key string `json:"key"`
}

type badgeRequest struct {
	Count int `json:"count"`
}

type labelBody struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}
