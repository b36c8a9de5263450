package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "endpoint without params",
			key: Key{
				Endpoint: "/artworks",
			},
			want: "artic:artworks",
		},
		{
			name: "endpoint with query params",
			key: Key{
				Endpoint: "/artworks",
				QueryParams: url.Values{
					"page": []string{"1"},
				},
			},
			want: "artic:artworks:page=1",
		},
		{
			name: "multiple query params sorted",
			key: Key{
				Endpoint: "/artworks",
				QueryParams: url.Values{
					"page":  []string{"3"},
					"limit": []string{"12"},
				},
			},
			want: "artic:artworks:limit=12:page=3",
		},
		{
			name: "sort param included",
			key: Key{
				Endpoint: "/artworks",
				QueryParams: url.Values{
					"page":    []string{"1"},
					"limit":   []string{"12"},
					"sort_by": []string{"title:desc"},
				},
			},
			want: "artic:artworks:limit=12:page=1:sort_by=title:desc",
		},
		{
			name: "trailing slash normalized",
			key: Key{
				Endpoint: "/artworks/",
			},
			want: "artic:artworks",
		},
		{
			name: "empty endpoint",
			key:  Key{},
			want: "artic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_String_Deterministic(t *testing.T) {
	key := Key{
		Endpoint: "/artworks",
		QueryParams: url.Values{
			"fields":  []string{"id,title"},
			"page":    []string{"2"},
			"limit":   []string{"25"},
			"sort_by": []string{"date_start"},
		},
	}

	first := key.String()
	for i := 0; i < 10; i++ {
		if got := key.String(); got != first {
			t.Fatalf("String() not deterministic: %q != %q", got, first)
		}
	}
}
