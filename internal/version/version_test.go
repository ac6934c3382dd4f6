package version

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"simple", "1.2.3", "1.2.3", false},
		{"v prefix", "v1.2.3", "1.2.3", false},
		{"prerelease", "1.2.3-rc.1", "1.2.3-rc.1", false},
		{"zero", "0.0.0", "0.0.0", false},
		{"missing patch", "1.2", "", true},
		{"not a version", "banana", "", true},
		{"letters in version", "1.a.3", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got.String() != tt.want {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.in, got.String(), tt.want)
			}
		})
	}
}

func TestCompareOrdering(t *testing.T) {
	ordered := []string{"0.1.0", "1.0.0", "1.2.0", "1.2.3", "1.2.3-alpha", "1.2.3-beta", "1.2.3", "2.0.0"}
	for i := 0; i < len(ordered)-1; i++ {
		a := MustParse(ordered[i])
		b := MustParse(ordered[i+1])
		if a.GreaterThan(b) {
			t.Errorf("expected %s <= %s", ordered[i], ordered[i+1])
		}
	}
}

func TestPrereleaseTiesWithRelease(t *testing.T) {
	pre := MustParse("1.2.3-rc.1")
	rel := MustParse("1.2.3")
	if !pre.Equal(rel) {
		t.Errorf("expected prerelease %s to compare equal to release %s", pre, rel)
	}
}

func TestTagString(t *testing.T) {
	v := MustParse("1.2.3")
	if got := v.TagString(); got != "v1.2.3" {
		t.Errorf("TagString() = %q, want v1.2.3", got)
	}
}

func TestEqual(t *testing.T) {
	if !MustParse("1.2.3").Equal(MustParse("v1.2.3")) {
		t.Error("expected 1.2.3 to equal v1.2.3")
	}
}
