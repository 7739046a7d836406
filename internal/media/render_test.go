package media

import "testing"

func TestEscapeFilterPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`/media/plain.mkv`, `/media/plain.mkv`},
		{`/media/it's here.mkv`, `/media/it\'s here.mkv`},
		{`C:\media\file.mkv`, `C\:\\media\\file.mkv`},
	}
	for _, tc := range cases {
		if got := escapeFilterPath(tc.in); got != tc.want {
			t.Errorf("escapeFilterPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFmtSeconds(t *testing.T) {
	if got := fmtSeconds(1.5); got != "1.500" {
		t.Errorf("fmtSeconds(1.5) = %q", got)
	}
	if got := fmtMs(10500); got != "10.500" {
		t.Errorf("fmtMs(10500) = %q", got)
	}
}

func TestVolumeRegexes(t *testing.T) {
	output := `[Parsed_volumedetect_0 @ 0x55d] n_samples: 479232
[Parsed_volumedetect_0 @ 0x55d] mean_volume: -23.4 dB
[Parsed_volumedetect_0 @ 0x55d] max_volume: -4.1 dB
`
	mean := meanVolumeRe.FindStringSubmatch(output)
	if len(mean) < 2 || mean[1] != "-23.4" {
		t.Fatalf("mean_volume not matched: %v", mean)
	}
	max := maxVolumeRe.FindStringSubmatch(output)
	if len(max) < 2 || max[1] != "-4.1" {
		t.Fatalf("max_volume not matched: %v", max)
	}
}
