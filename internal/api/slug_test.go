package api

import "testing"

func TestSlugFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://stockx.com/labubu-the-monsters-zimomo", "labubu-the-monsters-zimomo"},
		{"https://stockx.com/fr/air-jordan-1-retro-high-og", "air-jordan-1-retro-high-og"},
		{"https://stockx.com/nike-dunk-low?size=10", "nike-dunk-low"},
		{"https://stockx.com/de/adidas-samba/", "adidas-samba"},
		{"stockx.com/pop-mart-skullpanda", "pop-mart-skullpanda"},
		{"https://example.com/not-stockx", ""},
		{"not a url", ""},
	}

	for _, tt := range tests {
		if got := slugFromURL(tt.url); got != tt.want {
			t.Errorf("slugFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestSlugToName(t *testing.T) {
	tests := []struct {
		slug string
		want string
	}{
		{"labubu-the-monsters-zimomo", "Labubu The Monsters Zimomo"},
		{"air-jordan-1", "Air Jordan 1"},
		{"solo", "Solo"},
	}

	for _, tt := range tests {
		if got := slugToName(tt.slug); got != tt.want {
			t.Errorf("slugToName(%q) = %q, want %q", tt.slug, got, tt.want)
		}
	}
}
