package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) isLoggedIn(context.Context) bool { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error  { return f.record("register") }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) WhoAmI(context.Context) error         { return f.record("whoami") }
func (f *fakeExec) List(context.Context) error           { return f.record("list") }
func (f *fakeExec) AddRecord(context.Context) error      { return f.record("add") }
func (f *fakeExec) ShowRecord(context.Context) error     { return f.record("show") }
func (f *fakeExec) EditRecord(context.Context) error     { return f.record("edit") }
func (f *fakeExec) DeleteRecord(context.Context) error   { return f.record("delete") }
func (f *fakeExec) AttachFile(context.Context) error     { return f.record("attach") }
func (f *fakeExec) SaveAttachment(context.Context) error { return f.record("getfile") }
func (f *fakeExec) Friends(context.Context) error        { return f.record("friends") }
func (f *fakeExec) AddFriend(context.Context) error      { return f.record("addfriend") }
func (f *fakeExec) RemoveFriend(context.Context) error   { return f.record("rmfriend") }
func (f *fakeExec) SearchUsers(context.Context) error    { return f.record("search") }
func (f *fakeExec) SetAvatar(context.Context) error      { return f.record("avatar") }

func silencePrintln(t *testing.T) {
	t.Helper()
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"list",
		"add",
		"show r-1",
		"friends",
		"addfriend",
		"search bob",
		"avatar",
		"whoami",
		"bogus",
		"logout",
		"exit",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func(context.Context) string { return "status" }, bufio.NewScanner(input))

	want := []string{"login", "list", "add", "show", "friends", "addfriend", "search", "avatar", "whoami", "logout"}
	if len(exec.calls) != len(want) {
		t.Fatalf("calls = %+v, want %+v", exec.calls, want)
	}
	for i, name := range want {
		if exec.calls[i] != name {
			t.Fatalf("call %d = %q, want %q (all: %+v)", i, exec.calls[i], name, exec.calls)
		}
	}
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader("list\n")
	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func(context.Context) string { return "alice" }, bufio.NewScanner(input))

	if len(exec.calls) != 1 || exec.calls[0] != "list" {
		t.Fatalf("calls = %+v", exec.calls)
	}
}

func TestRunREPL_SkipsBlankLines(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader("\n\n  \nquit\n")
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func(context.Context) string { return "guest" }, bufio.NewScanner(input))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %+v", exec.calls)
	}
}
