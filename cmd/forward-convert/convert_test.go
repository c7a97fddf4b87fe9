// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		convertCmd.Flags().Set("output", "")
		convertCmd.Flags().Set("server", "")
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

const sampleExport = `{"forwards":[
	{"id":11714,"localPort":22240,"internetPort":22240,"remoteIp":"45.196.236.89","remotePort":8220,"remark":null},
	{"id":14798,"localPort":45422,"internetPort":45422,"remoteHost":"45.196.236.89","remotePort":20132,"remark":"B"}
]}`

const sampleRules = `{"dest":["45.196.236.89:8220"],"listen_port":22240,"name":"转发_11714"}` + "\n" +
	`{"dest":["45.196.236.89:20132"],"listen_port":45422,"name":"B"}`

func TestConvertCmd_Stdin(t *testing.T) {
	stdout, stderr, err := execute(t, sampleExport, "convert")
	require.NoError(t, err)
	assert.Equal(t, sampleRules, stdout)
	assert.Contains(t, stderr, "共转换 2 条转发规则")
}

func TestConvertCmd_FileToFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "xiandan.json")
	out := filepath.Join(dir, "nyanpass.json")
	require.NoError(t, os.WriteFile(in, []byte(sampleExport), 0o644))

	stdout, _, err := execute(t, "", "convert", in, "-o", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, sampleRules, string(data))
}

func TestConvertCmd_InvalidWritesNothing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nyanpass.json")

	_, _, err := execute(t, `{"forwards":[{"id":3,"remotePort":100,"internetPort":200}]}`, "convert", "-", "-o", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id=3")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestConvertCmd_MissingFile(t *testing.T) {
	_, _, err := execute(t, "", "convert", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading")
}

func TestCountRules(t *testing.T) {
	assert.Equal(t, 0, countRules(""))
	assert.Equal(t, 1, countRules(`{"a":1}`))
	assert.Equal(t, 2, countRules(sampleRules))
}

func TestConfigCmd(t *testing.T) {
	stdout, _, err := execute(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, stdout, ":8080")
	assert.Contains(t, stdout, "max_body_bytes: 1048576")
	assert.Contains(t, stdout, "shutdown_timeout: 10s")
	assert.Contains(t, stdout, "max_retries: 3")
}

func TestVersionCmd(t *testing.T) {
	stdout, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "forward-convert dev\n", stdout)
}
