package cachekey

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBaseKeyIdentifiesResource(t *testing.T) {
	keyer := NewKeyer()
	a := keyer.BaseKey(httptest.NewRequest("GET", "http://example.com/a", nil))
	b := keyer.BaseKey(httptest.NewRequest("GET", "http://example.com/b", nil))
	if a == b {
		t.Fatalf("Different paths share key %q", a)
	}
	if again := keyer.BaseKey(httptest.NewRequest("GET", "http://example.com/a", nil)); again != a {
		t.Fatalf("Key not deterministic: %q vs %q", a, again)
	}
}

func TestBaseKeyIncludesMethod(t *testing.T) {
	keyer := NewKeyer()
	get := keyer.BaseKey(httptest.NewRequest("GET", "/a", nil))
	head := keyer.BaseKey(httptest.NewRequest("HEAD", "/a", nil))
	if get == head {
		t.Fatalf("GET and HEAD share key %q", get)
	}
}

func TestBaseKeyIncludesHost(t *testing.T) {
	keyer := NewKeyer()
	a := keyer.BaseKey(httptest.NewRequest("GET", "http://a.example.com/", nil))
	b := keyer.BaseKey(httptest.NewRequest("GET", "http://b.example.com/", nil))
	if a == b {
		t.Fatalf("Different hosts share key %q", a)
	}
}

func TestBaseKeyIgnoresQuery(t *testing.T) {
	keyer := NewKeyer()
	a := keyer.BaseKey(httptest.NewRequest("GET", "/a?x=1", nil))
	b := keyer.BaseKey(httptest.NewRequest("GET", "/a?x=2", nil))
	if a != b {
		t.Fatalf("Query string leaked into base key: %q vs %q", a, b)
	}
}

func TestBaseKeyPathCase(t *testing.T) {
	sensitive := NewKeyer()
	if sensitive.BaseKey(httptest.NewRequest("GET", "/A", nil)) ==
		sensitive.BaseKey(httptest.NewRequest("GET", "/a", nil)) {
		t.Fatal("Case-sensitive keyer folded path case")
	}
	insensitive := Keyer{Partition: NoPartition{}}
	if insensitive.BaseKey(httptest.NewRequest("GET", "/A", nil)) !=
		insensitive.BaseKey(httptest.NewRequest("GET", "/a", nil)) {
		t.Fatal("Case-insensitive keyer kept path case")
	}
}

type staticPartition struct{ prefix, suffix string }

func (p staticPartition) Prefix(*http.Request) string { return p.prefix }
func (p staticPartition) Suffix(*http.Request) string { return p.suffix }

func TestPartitionContributesToKey(t *testing.T) {
	plain := NewKeyer()
	partitioned := Keyer{Partition: staticPartition{prefix: "tenant-a"}, CaseSensitivePaths: true}
	req := httptest.NewRequest("GET", "/a", nil)
	if plain.BaseKey(req) == partitioned.BaseKey(req) {
		t.Fatal("Partition prefix did not change the key")
	}
	suffixed := Keyer{Partition: staticPartition{suffix: "v2"}, CaseSensitivePaths: true}
	if plain.BaseKey(req) == suffixed.BaseKey(req) {
		t.Fatal("Partition suffix did not change the key")
	}
}

func TestVariedKeyDistinctFromBase(t *testing.T) {
	keyer := NewKeyer()
	req := httptest.NewRequest("GET", "/a", nil)
	base := keyer.BaseKey(req)
	// no nominated field present on the request: still not the base key,
	// which holds the vary marker
	varied := keyer.VariedKey(base, req, VaryRules{Headers: []string{"Accept-Language"}})
	if varied == base {
		t.Fatalf("Varied key collides with base key %q", base)
	}
}

func TestVariedKeyHeaderValues(t *testing.T) {
	keyer := NewKeyer()
	rules := VaryRules{Headers: []string{"Accept-Language"}}
	request := func(lang string) *http.Request {
		req := httptest.NewRequest("GET", "/a", nil)
		if lang != "" {
			req.Header.Set("Accept-Language", lang)
		}
		return req
	}
	base := keyer.BaseKey(request(""))

	en := keyer.VariedKey(base, request("en"), rules)
	fi := keyer.VariedKey(base, request("fi"), rules)
	absent := keyer.VariedKey(base, request(""), rules)
	if en == fi || en == absent || fi == absent {
		t.Fatalf("Variants not distinct: %q / %q / %q", en, fi, absent)
	}
	if again := keyer.VariedKey(base, request("en"), rules); again != en {
		t.Fatalf("Varied key not deterministic: %q vs %q", en, again)
	}
}

func TestVariedKeyAbsentVersusEmpty(t *testing.T) {
	keyer := NewKeyer()
	rules := VaryRules{Headers: []string{"X-Flag"}}
	absent := httptest.NewRequest("GET", "/a", nil)
	empty := httptest.NewRequest("GET", "/a", nil)
	empty.Header.Set("X-Flag", "")
	base := keyer.BaseKey(absent)

	if keyer.VariedKey(base, absent, rules) == keyer.VariedKey(base, empty, rules) {
		t.Fatal("Absent header and empty header share a variant")
	}
}

func TestVariedKeyQueryNamesCaseInsensitive(t *testing.T) {
	keyer := NewKeyer()
	rules := VaryRules{QueryKeys: []string{"Page"}}
	base := "base"

	lower := keyer.VariedKey(base, httptest.NewRequest("GET", "/a?page=1", nil), rules)
	upper := keyer.VariedKey(base, httptest.NewRequest("GET", "/a?PAGE=1", nil), rules)
	if lower != upper {
		t.Fatalf("Query name case changed the key: %q vs %q", lower, upper)
	}
	other := keyer.VariedKey(base, httptest.NewRequest("GET", "/a?page=2", nil), rules)
	if lower == other {
		t.Fatal("Different query values share a variant")
	}
}

func TestVariedKeyQueryValueOrder(t *testing.T) {
	keyer := NewKeyer()
	rules := VaryRules{QueryKeys: []string{"tag"}}
	base := "base"

	ab := keyer.VariedKey(base, httptest.NewRequest("GET", "/a?tag=a&tag=b", nil), rules)
	ba := keyer.VariedKey(base, httptest.NewRequest("GET", "/a?tag=b&tag=a", nil), rules)
	if ab != ba {
		t.Fatalf("Repeated value order changed the key: %q vs %q", ab, ba)
	}
}

func TestVariedKeyQueryWildcard(t *testing.T) {
	keyer := NewKeyer()
	rules := VaryRules{QueryKeys: []string{"*"}}
	base := "base"

	a := keyer.VariedKey(base, httptest.NewRequest("GET", "/a?x=1", nil), rules)
	b := keyer.VariedKey(base, httptest.NewRequest("GET", "/a?y=1", nil), rules)
	if a == b {
		t.Fatal("Wildcard did not select all parameters")
	}
	reordered := keyer.VariedKey(base, httptest.NewRequest("GET", "/a?y=2&x=1", nil), rules)
	same := keyer.VariedKey(base, httptest.NewRequest("GET", "/a?x=1&y=2", nil), rules)
	if reordered != same {
		t.Fatalf("Parameter order changed the key: %q vs %q", reordered, same)
	}
}

func TestVariedKeyIgnoresUnrelatedHeaders(t *testing.T) {
	keyer := NewKeyer()
	rules := VaryRules{Headers: []string{"Accept-Language"}}
	plain := httptest.NewRequest("GET", "/a", nil)
	plain.Header.Set("Accept-Language", "en")
	noisy := httptest.NewRequest("GET", "/a", nil)
	noisy.Header.Set("Accept-Language", "en")
	noisy.Header.Set("User-Agent", "test")
	base := "base"

	if keyer.VariedKey(base, plain, rules) != keyer.VariedKey(base, noisy, rules) {
		t.Fatal("Non-nominated header changed the key")
	}
}
