package schema

import (
	"strings"
	"testing"
)

func TestNote_Validate(t *testing.T) {
	tests := []struct {
		name    string
		note    Note
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid note",
			note: Note{
				Title: "Groceries",
				Color: ColorYellow,
				Items: []NoteItem{{Text: "milk"}},
			},
			wantErr: false,
		},
		{
			name: "missing title",
			note: Note{
				Color: ColorGreen,
			},
			wantErr: true,
			errMsg:  "title is required",
		},
		{
			name: "whitespace title",
			note: Note{
				Title: "   ",
				Color: ColorGreen,
			},
			wantErr: true,
			errMsg:  "title is required",
		},
		{
			name: "title too long",
			note: Note{
				Title: strings.Repeat("x", MaxTitleLen+1),
				Color: ColorYellow,
			},
			wantErr: true,
			errMsg:  "title must be 200 characters or less",
		},
		{
			name: "unknown color",
			note: Note{
				Title: "Groceries",
				Color: Color("chartreuse"),
			},
			wantErr: true,
			errMsg:  "unknown color",
		},
		{
			name: "negative window size",
			note: Note{
				Title:  "Groceries",
				Color:  ColorBlue,
				Width:  -1,
				Height: 100,
			},
			wantErr: true,
			errMsg:  "window size cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.note.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Validate() expected error, got nil")
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() error = %q, want substring %q", err, tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestNote_SetDefaults(t *testing.T) {
	n := Note{Title: "Errands"}
	n.SetDefaults()

	if n.Color != DefaultColor {
		t.Errorf("Color = %q, want %q", n.Color, DefaultColor)
	}
	if n.Items == nil {
		t.Error("Items should be initialized to an empty slice")
	}
}

func TestNote_Matches(t *testing.T) {
	n := Note{Title: "Groceries", Color: ColorPink}

	if !n.Matches("Groceries", ColorPink) {
		t.Error("expected match on identical title+color")
	}
	if n.Matches("Groceries", ColorBlue) {
		t.Error("should not match on different color")
	}
	if n.Matches("groceries", ColorPink) {
		t.Error("title match is case-sensitive")
	}
}

func TestNote_CountChecked(t *testing.T) {
	n := Note{
		Title: "Chores",
		Color: ColorYellow,
		Items: []NoteItem{
			{Text: "Today", Heading: true, Checked: true}, // heading: not counted
			{Text: "dishes", Checked: true},
			{Text: "laundry"},
			{Text: "vacuum", Checked: true, Critical: true},
		},
	}

	if got := n.CountChecked(); got != 2 {
		t.Errorf("CountChecked() = %d, want 2", got)
	}
}

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"yellow", ColorYellow},
		{"PINK", ColorPink},
		{"  blue ", ColorBlue},
		{"#FEF49C", ColorYellow},
		{"#cde99b", ColorGreen},
		{"mauve", DefaultColor},
		{"", DefaultColor},
		{"#123456", DefaultColor},
	}

	for _, tt := range tests {
		if got := NormalizeColor(tt.in); got != tt.want {
			t.Errorf("NormalizeColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColor_Hex(t *testing.T) {
	if ColorGreen.Hex() != "#CDE99B" {
		t.Errorf("ColorGreen.Hex() = %q", ColorGreen.Hex())
	}
	// Unknown colors fall back to the default hex rather than empty.
	if Color("bogus").Hex() != DefaultColor.Hex() {
		t.Errorf("unknown color hex = %q, want default", Color("bogus").Hex())
	}
}

func TestPalette(t *testing.T) {
	p := Palette()
	if len(p) == 0 {
		t.Fatal("palette is empty")
	}
	for _, c := range p {
		if !c.Valid() {
			t.Errorf("palette color %q is not valid", c)
		}
	}
	// Mutating the returned slice must not affect the palette.
	p[0] = Color("bogus")
	if Palette()[0] != ColorYellow {
		t.Error("Palette() returned a shared slice")
	}
}
