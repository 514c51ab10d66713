package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  []string
}

func (f *fakeExec) record(cmd string, args ...string) error {
	f.calls = append(f.calls, cmd)
	f.args = append(f.args, args...)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	return f.record("register")
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) WhoAmI(ctx context.Context) error      { return f.record("whoami") }
func (f *fakeExec) EditProfile(ctx context.Context) error { return f.record("profile") }
func (f *fakeExec) UploadAvatar(ctx context.Context, path string) error {
	return f.record("avatar", path)
}
func (f *fakeExec) VerifyEmail(ctx context.Context, token string) error {
	return f.record("verify", token)
}
func (f *fakeExec) ForgotPassword(ctx context.Context) error { return f.record("forgot") }
func (f *fakeExec) ResetPassword(ctx context.Context, token string) error {
	return f.record("reset", token)
}
func (f *fakeExec) Status(ctx context.Context) error { return f.record("status") }

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"whoami",
		"profile",
		"avatar /tmp/me.png",
		"verify abc",
		"status",
		"logout",
		"forgot",
		"reset xyz",
		"register",
		"foobar",
		"exit",
		"login",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(input))

	want := []string{"login", "whoami", "profile", "avatar", "verify", "status", "logout", "forgot", "reset", "register"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
	if strings.Join(exec.args, ",") != "/tmp/me.png,abc,xyz" {
		t.Fatalf("args = %v", exec.args)
	}
}

func TestRunREPL_UsageAndQuit(t *testing.T) {
	var printed []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		if len(a) > 0 {
			if s, ok := a[0].(string); ok {
				printed = append(printed, s)
			}
		}
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("avatar\nverify\nreset\nquit\n")))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	joined := strings.Join(printed, "|")
	for _, usage := range []string{"Usage: avatar <path>", "Usage: verify <token>", "Usage: reset <token>", "Bye!"} {
		if !strings.Contains(joined, usage) {
			t.Fatalf("missing %q in output %q", usage, joined)
		}
	}
}

func TestRunREPL_StopsOnEOFWithoutTrailingNewline(t *testing.T) {
	silencePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("\n  \nstatus")))

	if len(exec.calls) != 1 || exec.calls[0] != "status" {
		t.Fatalf("calls = %v", exec.calls)
	}
}
