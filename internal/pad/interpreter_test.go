package pad

import (
	"strings"
	"testing"
)

// TestInterpret tests pad-name derivation across URL schemes.
func TestInterpret(t *testing.T) {
	t.Parallel()

	t.Run("modern pad URL", func(t *testing.T) {
		t.Parallel()

		info := Interpret("https://etherpad.wikimedia.org/p/wm2024-session1")
		if info == nil {
			t.Fatal("expected pad info, got nil")
		}
		if info.Name != "wm2024-session1" {
			t.Errorf("expected name 'wm2024-session1', got %q", info.Name)
		}
		if info.ExportURL != "https://etherpad.wikimedia.org/p/wm2024-session1/export/txt" {
			t.Errorf("unexpected export URL %q", info.ExportURL)
		}
		if info.SafeFilename != "wm2024-session1.txt" {
			t.Errorf("expected filename 'wm2024-session1.txt', got %q", info.SafeFilename)
		}
	})

	t.Run("legacy scheme is normalized", func(t *testing.T) {
		t.Parallel()

		info := Interpret("http://etherpad.wikimedia.org/ep/pad/view/ro.xxx/latest")
		if info == nil {
			t.Fatal("expected pad info, got nil")
		}
		if info.Name != "ro.xxx" {
			t.Errorf("expected name 'ro.xxx', got %q", info.Name)
		}
		if info.SafeFilename != "ro.xxx.txt" {
			t.Errorf("expected filename 'ro.xxx.txt', got %q", info.SafeFilename)
		}
		if info.ExportURL != "https://etherpad.wikimedia.org/p/ro.xxx/export/txt" {
			t.Errorf("unexpected export URL %q", info.ExportURL)
		}
	})

	t.Run("legacy scheme with nested path", func(t *testing.T) {
		t.Parallel()

		info := Interpret("http://etherpad.wikimedia.org/ep/pad/view/foo/bar/latest")
		if info == nil {
			t.Fatal("expected pad info, got nil")
		}
		if info.Name != "foo_bar" {
			t.Errorf("expected name 'foo_bar', got %q", info.Name)
		}
	})

	t.Run("bare remainder on the etherpad host", func(t *testing.T) {
		t.Parallel()

		info := Interpret("https://etherpad.wikimedia.org/SomePad")
		if info == nil {
			t.Fatal("expected pad info, got nil")
		}
		if info.Name != "SomePad" {
			t.Errorf("expected name 'SomePad', got %q", info.Name)
		}
	})

	t.Run("trailing slashes are trimmed", func(t *testing.T) {
		t.Parallel()

		info := Interpret("https://etherpad.wikimedia.org/p/mypad//")
		if info == nil {
			t.Fatal("expected pad info, got nil")
		}
		if info.Name != "mypad" {
			t.Errorf("expected name 'mypad', got %q", info.Name)
		}
	})

	t.Run("skips links without a pad name", func(t *testing.T) {
		t.Parallel()

		for _, link := range []string{
			"https://etherpad.wikimedia.org/p/",
			"https://etherpad.wikimedia.org/p",
			"https://etherpad.wikimedia.org/",
			"https://etherpad.wikimedia.org",
			"https://example.org/nothing-to-do-with-pads",
		} {
			if info := Interpret(link); info != nil {
				t.Errorf("Interpret(%q) = %+v, want nil", link, info)
			}
		}
	})
}

// TestSafeFilename tests filename sanitization.
func TestSafeFilename(t *testing.T) {
	t.Parallel()

	t.Run("replaces unsafe characters", func(t *testing.T) {
		t.Parallel()

		info := Interpret("https://etherpad.wikimedia.org/p/some pad/name")
		if info == nil {
			t.Fatal("expected pad info, got nil")
		}
		if info.SafeFilename != "some_pad_name.txt" {
			t.Errorf("expected 'some_pad_name.txt', got %q", info.SafeFilename)
		}
	})

	t.Run("decodes percent-encoding before sanitizing", func(t *testing.T) {
		t.Parallel()

		info := Interpret("https://etherpad.wikimedia.org/p/wm%202024")
		if info == nil {
			t.Fatal("expected pad info, got nil")
		}
		if info.SafeFilename != "wm_2024.txt" {
			t.Errorf("expected 'wm_2024.txt', got %q", info.SafeFilename)
		}
	})

	t.Run("replaces non-ASCII characters", func(t *testing.T) {
		t.Parallel()

		info := Interpret("https://etherpad.wikimedia.org/p/padü")
		if info == nil {
			t.Fatal("expected pad info, got nil")
		}
		if info.SafeFilename != "pad_.txt" {
			t.Errorf("expected 'pad_.txt', got %q", info.SafeFilename)
		}
	})

	t.Run("truncates long names", func(t *testing.T) {
		t.Parallel()

		info := Interpret("https://etherpad.wikimedia.org/p/" + strings.Repeat("a", 300))
		if info == nil {
			t.Fatal("expected pad info, got nil")
		}
		// 200 characters plus ".txt"
		if len(info.SafeFilename) != 204 {
			t.Errorf("expected 204-character filename, got %d", len(info.SafeFilename))
		}
		if !strings.HasSuffix(info.SafeFilename, ".txt") {
			t.Errorf("expected .txt suffix, got %q", info.SafeFilename)
		}
	})
}
