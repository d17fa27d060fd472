package sysdash

import "testing"

func TestNewPagePlaceholders(t *testing.T) {
	p := NewPage()
	for _, id := range textElements {
		if got := p.Text(id); got != "--" {
			t.Errorf("Text(%q) = %q, want %q", id, got, "--")
		}
	}
	if p.Status.Text != "Connecting" || p.Status.Class != BadgeConnecting {
		t.Errorf("initial status = %+v", p.Status)
	}
	if len(p.IDs()) != len(textElements) {
		t.Errorf("IDs() has %d entries, want %d", len(p.IDs()), len(textElements))
	}
}

func TestPageSetText(t *testing.T) {
	p := NewPage()
	if err := p.SetText(ElemCPUPercent, "12.0%"); err != nil {
		t.Fatalf("SetText known id: %v", err)
	}
	if p.Text(ElemCPUPercent) != "12.0%" {
		t.Errorf("Text = %q", p.Text(ElemCPUPercent))
	}
	if err := p.SetText("doesNotExist", "x"); err == nil {
		t.Error("SetText with unknown id succeeded")
	}
	if p.Text("doesNotExist") != "" {
		t.Error("unknown id was created by SetText")
	}
}
