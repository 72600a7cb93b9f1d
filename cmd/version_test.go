package cmd

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "staticembed dev (commit unknown, "+runtime.Version()+" "+runtime.GOOS+"/"+runtime.GOARCH+")\n", buf.String())

	buf.Reset()
	a := assert.New(t)
	a.NoError(versionCmd.Flags().Set("short", "true"))
	t.Cleanup(func() { versionCmd.Flags().Set("short", "false") })
	versionCmd.Run(versionCmd, nil)
	a.Equal("dev\n", buf.String())
}
