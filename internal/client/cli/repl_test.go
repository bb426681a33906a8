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

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) Whoami(ctx context.Context) error {
	f.calls = append(f.calls, "whoami")
	return nil
}
func (f *fakeExec) AddToCart(ctx context.Context) error {
	f.calls = append(f.calls, "add")
	return nil
}
func (f *fakeExec) RemoveFromCart(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "remove")
	f.args = args
	return nil
}
func (f *fakeExec) SetQuantity(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "qty")
	f.args = args
	return nil
}
func (f *fakeExec) ShowCart(ctx context.Context) error {
	f.calls = append(f.calls, "cart")
	return nil
}
func (f *fakeExec) ClearCart(ctx context.Context) error {
	f.calls = append(f.calls, "clear")
	return nil
}
func (f *fakeExec) SyncCart(ctx context.Context) error {
	f.calls = append(f.calls, "sync")
	return nil
}

func muteOutput(t *testing.T) {
	t.Helper()
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	muteOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"add",
		"cart",
		"qty p1 3",
		"sync",
		"foobar",
		"logout",
		"exit",
	}, "\n"))

	exec := &fakeExec{loggedIn: false}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	wantOrder := []string{"login", "add", "cart", "qty", "sync", "logout"}
	if len(exec.calls) != len(wantOrder) {
		t.Fatalf("unexpected calls: %+v", exec.calls)
	}
	for i, want := range wantOrder {
		if exec.calls[i] != want {
			t.Fatalf("call %d: got %q, want %q (all: %+v)", i, exec.calls[i], want, exec.calls)
		}
	}
}

func TestRunREPL_PassesArgs(t *testing.T) {
	muteOutput(t)

	input := strings.NewReader("remove p42\nquit\n")
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	if len(exec.args) != 1 || exec.args[0] != "p42" {
		t.Fatalf("args not forwarded: %+v", exec.args)
	}
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	muteOutput(t)

	input := strings.NewReader("help\n")
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	if len(exec.calls) != 0 {
		t.Fatalf("help should not dispatch: %+v", exec.calls)
	}
}
