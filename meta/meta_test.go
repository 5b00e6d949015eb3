package meta

import "testing"

func TestDefaultConventionPinnedValues(t *testing.T) {
	c := Default()

	if got := c.MetaFor("", true); got != "_meta.json" {
		t.Errorf(`MetaFor("", true) = %q, want "_meta.json"`, got)
	}
	if got := c.MetaFor("foo", false); got != "foo_meta.json" {
		t.Errorf(`MetaFor("foo", false) = %q, want "foo_meta.json"`, got)
	}
	if got := c.MetaFor("foo", true); got != "foo/_meta.json" {
		t.Errorf(`MetaFor("foo", true) = %q, want "foo/_meta.json"`, got)
	}
}

func TestIsMetaRootIsFalse(t *testing.T) {
	c := Default()
	if c.IsMeta("") {
		t.Error(`IsMeta("") = true, want false`)
	}
}

func TestIsMetaRoundTrip(t *testing.T) {
	conventions := []Convention{
		Default(),
		{FilePrefix: "meta_"},
		{PathPrefix: "meta", PathSuffix: "_m", FileSuffix: "_meta.json"},
		{PathPrefix: "ns", FilePrefix: "_", FileSuffix: ".meta.yaml"},
	}
	paths := []string{"foo", "a/b/c", "top"}

	for _, c := range conventions {
		for _, p := range paths {
			for _, isDir := range []bool{true, false} {
				got := c.MetaFor(p, isDir)
				if !c.IsMeta(got) {
					t.Errorf("convention %+v: IsMeta(MetaFor(%q, %v)=%q) = false, want true", c, p, isDir, got)
				}
			}
		}
	}
}

func TestValidateRejectsEmptyFileAffixes(t *testing.T) {
	c := Convention{PathPrefix: "x"}
	if err := c.Validate(); err == nil {
		t.Error("expected error when both FilePrefix and FileSuffix are empty")
	}
}

func TestOrdinaryPathIsNotMeta(t *testing.T) {
	c := Default()
	if c.IsMeta("blub/bar") {
		t.Error(`IsMeta("blub/bar") = true, want false`)
	}
}
