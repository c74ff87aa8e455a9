package layout

import (
	"fmt"
	"strconv"
)

// TopLevel is the container value of items that sit on the main grid rather
// than inside a folder. It is outside the range of store-assigned row ids.
const TopLevel int64 = -100

// Kind discriminates the three item variants. The numeric values are the
// type ids written to durable rows.
type Kind int

const (
	KindApp    Kind = 0
	KindWidget Kind = 1
	KindFolder Kind = 2
)

// String returns a lowercase name for the kind.
func (k Kind) String() string {
	switch k {
	case KindApp:
		return "app"
	case KindWidget:
		return "widget"
	case KindFolder:
		return "folder"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a kind name back to its value.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "app":
		return KindApp, nil
	case "widget":
		return KindWidget, nil
	case "folder":
		return KindFolder, nil
	}
	return 0, fmt.Errorf("unknown item kind %q", s)
}

// Payload is the variant-specific part of an [Item]. It is implemented only
// by [App], [Widget] and [Folder].
type Payload interface {
	Kind() Kind
	// Key is the stable identity of the item across sessions.
	Key() string
	isPayload()
}

// App is an application launcher icon.
type App struct {
	Bundle  string `json:"bundle"`
	Ability string `json:"ability"`
	Module  string `json:"module"`
}

func (App) Kind() Kind { return KindApp }

// Key concatenates bundle, ability and module, matching the key_name column.
func (a App) Key() string { return a.Bundle + a.Ability + a.Module }

func (App) isPayload() {}

// Widget is a form card hosted by an application.
type Widget struct {
	CardID    int64  `json:"card_id"`
	Bundle    string `json:"bundle"`
	Ability   string `json:"ability"`
	Module    string `json:"module"`
	Dimension int    `json:"dimension"`
}

func (Widget) Kind() Kind { return KindWidget }

func (w Widget) Key() string { return strconv.FormatInt(w.CardID, 10) }

func (Widget) isPayload() {}

// Folder groups apps. Its members live in [Snapshot.Folders] under ID.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (Folder) Kind() Kind { return KindFolder }

func (f Folder) Key() string { return f.ID }

func (Folder) isPayload() {}

// Area is an item's footprint in grid cells.
type Area struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// String formats the area the way it is stored: "W,H".
func (a Area) String() string {
	return strconv.Itoa(a.Width) + "," + strconv.Itoa(a.Height)
}

// Item is one placed element of a layout.
type Item struct {
	Payload   Payload
	Area      Area
	Page      int
	Row       int
	Column    int
	Container int64
	Badge     int
}

// NewApp returns a 1x1 top-level app item.
func NewApp(bundle, ability, module string) Item {
	return Item{
		Payload:   App{Bundle: bundle, Ability: ability, Module: module},
		Area:      Area{Width: 1, Height: 1},
		Container: TopLevel,
	}
}

// NewWidget returns a top-level widget item spanning width×height cells.
func NewWidget(w Widget, width, height int) Item {
	return Item{
		Payload:   w,
		Area:      Area{Width: width, Height: height},
		Container: TopLevel,
	}
}

// NewFolder returns a top-level folder item with the given footprint.
func NewFolder(id, name string, area Area) Item {
	return Item{
		Payload:   Folder{ID: id, Name: name},
		Area:      area,
		Container: TopLevel,
	}
}

// Key returns the item's identity, or "" for an item without payload.
func (it Item) Key() string {
	if it.Payload == nil {
		return ""
	}
	return it.Payload.Key()
}

// Kind returns the payload kind. Items without payload report KindApp.
func (it Item) Kind() Kind {
	if it.Payload == nil {
		return KindApp
	}
	return it.Payload.Kind()
}

// Bundle returns the owning application bundle for apps and widgets.
func (it Item) Bundle() string {
	switch p := it.Payload.(type) {
	case App:
		return p.Bundle
	case Widget:
		return p.Bundle
	}
	return ""
}

// IsTopLevel reports whether the item sits on the main grid.
func (it Item) IsTopLevel() bool { return it.Container == TopLevel }

// Overlaps reports whether the rectangles of two items on the same page
// intersect. Zero-area items never overlap anything.
func (it Item) Overlaps(o Item) bool {
	if it.Page != o.Page {
		return false
	}
	return rectsOverlap(it.Row, it.Column, it.Area.Height, it.Area.Width,
		o.Row, o.Column, o.Area.Height, o.Area.Width)
}

// InBounds reports whether the item's rectangle lies inside a rows×cols grid.
func (it Item) InBounds(rows, cols int) bool {
	return it.Row >= 0 && it.Column >= 0 &&
		it.Row+it.Area.Height <= rows && it.Column+it.Area.Width <= cols
}

func (it Item) String() string {
	return fmt.Sprintf("%s %q @p%d r%d c%d [%s]", it.Kind(), it.Key(), it.Page, it.Row, it.Column, it.Area)
}

func rectsOverlap(r1, c1, h1, w1, r2, c2, h2, w2 int) bool {
	if h1 <= 0 || w1 <= 0 || h2 <= 0 || w2 <= 0 {
		return false
	}
	return r1 < r2+h2 && r2 < r1+h1 && c1 < c2+w2 && c2 < c1+w1
}
