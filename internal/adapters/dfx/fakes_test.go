package dfx

import (
	"errors"
	"os"
	"strings"

	"github.com/bitrise-io/go-utils/v2/command"
)

type invocation struct {
	name     string
	args     []string
	argument string
}

// fakeCommandFactory records invocations and reads the argument file while
// the command "runs", since the writer removes it afterwards.
type fakeCommandFactory struct {
	invocations []invocation
	output      string
	err         error
}

func (f *fakeCommandFactory) Create(name string, args []string, opts *command.Opts) command.Command {
	return &fakeCommand{factory: f, name: name, args: args}
}

type fakeCommand struct {
	factory *fakeCommandFactory
	name    string
	args    []string
}

func (c *fakeCommand) PrintableCommandArgs() string {
	return c.name + " " + strings.Join(c.args, " ")
}

func (c *fakeCommand) RunAndReturnTrimmedCombinedOutput() (string, error) {
	inv := invocation{name: c.name, args: c.args}
	if n := len(c.args); n > 0 {
		content, err := os.ReadFile(c.args[n-1])
		if err != nil {
			return "", errors.New("argument file missing: " + err.Error())
		}
		inv.argument = string(content)
	}
	c.factory.invocations = append(c.factory.invocations, inv)
	return c.factory.output, c.factory.err
}

func (c *fakeCommand) Run() error                                 { return nil }
func (c *fakeCommand) RunAndReturnExitCode() (int, error)         { return 0, nil }
func (c *fakeCommand) RunAndReturnTrimmedOutput() (string, error) { return "", nil }
func (c *fakeCommand) Start() error                               { return nil }
func (c *fakeCommand) Wait() error                                { return nil }
