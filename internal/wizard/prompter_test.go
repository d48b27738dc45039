package wizard

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
)

func consoleFor(in string) (*ConsolePrompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &ConsolePrompter{
		reader:       bufio.NewReader(strings.NewReader(in)),
		out:          out,
		readPassword: func(int) ([]byte, error) { return []byte("hunter2"), nil },
	}, out
}

func TestYesNoTokens(t *testing.T) {
	tests := []struct {
		answer string
		def    bool
		want   bool
	}{
		{"y\n", false, true},
		{"yes\n", false, true},
		{"TRUE\n", false, true},
		{"1\n", false, true},
		{"n\n", true, false},
		{"no\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
	}
	for _, tt := range tests {
		p, _ := consoleFor(tt.answer)
		got, err := p.YesNo(context.Background(), "Proceed?", tt.def)
		if err != nil {
			t.Fatalf("YesNo(%q) error = %v", tt.answer, err)
		}
		if got != tt.want {
			t.Errorf("YesNo(%q, def=%v) = %v; want %v", tt.answer, tt.def, got, tt.want)
		}
	}
}

func TestYesNoRepromptsOnGarbage(t *testing.T) {
	p, out := consoleFor("maybe\ny\n")
	got, err := p.YesNo(context.Background(), "Proceed?", false)
	if err != nil {
		t.Fatalf("YesNo() error = %v", err)
	}
	if !got {
		t.Error("YesNo() = false; want true after re-prompt")
	}
	if !strings.Contains(out.String(), "'y' or 'n'") {
		t.Errorf("missing re-prompt hint: %q", out.String())
	}
}

func TestInputDefaultOnEmpty(t *testing.T) {
	p, out := consoleFor("\n")
	got, err := p.Input(context.Background(), "Backup path", "/etc")
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	if got != "/etc" {
		t.Errorf("Input() = %q; want default", got)
	}
	if !strings.Contains(out.String(), "[/etc]") {
		t.Errorf("default not shown in prompt: %q", out.String())
	}
}

func TestInputRequiredLoops(t *testing.T) {
	p, out := consoleFor("\n\nfileserver\n")
	got, err := p.Input(context.Background(), "Host identifier", "")
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	if got != "fileserver" {
		t.Errorf("Input() = %q; want %q", got, "fileserver")
	}
	if n := strings.Count(out.String(), "This field is required."); n != 2 {
		t.Errorf("required hint shown %d times; want 2", n)
	}
}

func TestSecretNoEcho(t *testing.T) {
	p, out := consoleFor("")
	got, err := p.Secret(context.Background(), "Admin password")
	if err != nil {
		t.Fatalf("Secret() error = %v", err)
	}
	if got != "hunter2" {
		t.Errorf("Secret() = %q", got)
	}
	if strings.Contains(out.String(), "hunter2") {
		t.Error("secret echoed to output")
	}
}
