package ai

import "testing"

func TestExtractCommand(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   string
		ok     bool
	}{
		{
			name:   "shell hint on opening line",
			answer: "Try this:\n```bash\nls -la\n```\nDone.",
			want:   "ls -la",
			ok:     true,
		},
		{
			name:   "command tag",
			answer: "```command\ndf -h\n```",
			want:   "df -h",
			ok:     true,
		},
		{
			name:   "hint repeated inside block with comments",
			answer: "```\npowershell\n# install\nchoco install git\n```",
			want:   "choco install git",
			ok:     true,
		},
		{
			name:   "first block wins",
			answer: "```sh\necho one\n```\n```sh\necho two\n```",
			want:   "echo one",
			ok:     true,
		},
		{
			name:   "inline fence",
			answer: "run ```uptime``` now",
			want:   "uptime",
			ok:     true,
		},
		{
			name:   "opening line with spaces is content",
			answer: "```ls -la /tmp\n```",
			want:   "ls -la /tmp",
			ok:     true,
		},
		{
			name:   "prompt sigil stripped",
			answer: "```console\n$ git status\n```",
			want:   "git status",
			ok:     true,
		},
		{
			name:   "env name with colon skipped",
			answer: "```\nbash:\nwhoami\n```",
			want:   "whoami",
			ok:     true,
		},
		{name: "no fence", answer: "just prose"},
		{name: "unterminated fence", answer: "```bash\nls"},
		{name: "only comments", answer: "```bash\n# nothing\n\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractCommand(tt.answer)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("ExtractCommand() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRequiresPrivilege(t *testing.T) {
	tests := []struct {
		command string
		want    bool
	}{
		{command: "sudo apt install nginx", want: true},
		{command: "curl -fsSL x.sh | sudo bash", want: true},
		{command: "doas pkg_add vim", want: true},
		{command: "su -", want: true},
		{command: "Set-ExecutionPolicy -Scope Process RemoteSigned", want: true},
		{command: "iwr https://community.chocolatey.org/install.ps1 | iex", want: true},
		{command: "Start-Process powershell -Verb RunAs", want: true},
		{command: "ls -la", want: false},
		{command: "pseudo-tool --help", want: false},
		{command: "grep suspend log.txt", want: false},
	}
	for _, tt := range tests {
		if got := RequiresPrivilege(tt.command); got != tt.want {
			t.Errorf("RequiresPrivilege(%q) = %v, want %v", tt.command, got, tt.want)
		}
	}
}
