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

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoice.html")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_CleansFile(t *testing.T) {
	path := writeFile(t, `<html><body><!--secret--><script>alert(1)</script><p>Invoice #42</p></body></html>`)

	var stdout, stderr bytes.Buffer
	code := run([]string{path}, &stdout, &stderr)

	require.Equal(t, exitOK, code, "stderr: %s", stderr.String())
	assert.Empty(t, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "Invoice #42")
	assert.Contains(t, out, "<body>")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "alert")
	assert.NotContains(t, out, "<!--")
	assert.NotContains(t, out, "secret")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestRun_Idempotent(t *testing.T) {
	path := writeFile(t, `<!DOCTYPE html><html><body><div><h1>ACME</h1><!-- x --><p>Total: $10.00</p></div><script>track()</script></body></html>`)

	var first, stderr bytes.Buffer
	require.Equal(t, exitOK, run([]string{path}, &first, &stderr))

	again := writeFile(t, first.String())
	var second bytes.Buffer
	require.Equal(t, exitOK, run([]string{again}, &second, &stderr))

	assert.Equal(t, first.String(), second.String())
}

func TestRun_NoArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, &stdout, &stderr)

	assert.Equal(t, exitUsage, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Usage:")
	assert.Contains(t, stderr.String(), "clean-invoice <path-to-html-file>")
}

func TestRun_TooManyArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"a.html", "b.html"}, &stdout, &stderr)

	assert.Equal(t, exitUsage, code)
	assert.Empty(t, stdout.String())
}

func TestRun_UnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--pretty", "a.html"}, &stdout, &stderr)

	assert.Equal(t, exitUsage, code)
	assert.Empty(t, stdout.String())
}

func TestRun_HelpFlagIsUsageError(t *testing.T) {
	for _, flag := range []string{"--help", "-h"} {
		t.Run(flag, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run([]string{flag}, &stdout, &stderr)

			assert.Equal(t, exitUsage, code)
			assert.Empty(t, stdout.String())
			assert.Contains(t, stderr.String(), "unknown flag "+flag)
			assert.Contains(t, stderr.String(), "Usage:")
		})
	}
}

func TestRun_DoubleDashEndsOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "-invoice.html")
	require.NoError(t, os.WriteFile(path, []byte(`<p>Total</p><script>x()</script>`), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	var stdout, stderr bytes.Buffer
	code := run([]string{"--", "-invoice.html"}, &stdout, &stderr)

	require.Equal(t, exitOK, code, "stderr: %s", stderr.String())
	assert.Contains(t, stdout.String(), "Total")
	assert.NotContains(t, stdout.String(), "<script")
}

func TestRun_CleansNoscriptAndTemplateContent(t *testing.T) {
	path := writeFile(t, `<html><head><noscript><script>h()</script><!--hc--></noscript></head><body>`+
		`<noscript><script>x()</script><!--c--><p>Enable JS</p></noscript>`+
		`<template><p>t</p><script>y()</script><!--tc--></template>`+
		`<pre>  a
   b</pre><p>Invoice #42</p></body></html>`)

	var stdout, stderr bytes.Buffer
	code := run([]string{path}, &stdout, &stderr)

	require.Equal(t, exitOK, code, "stderr: %s", stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "Enable JS")
	assert.Contains(t, out, "Invoice #42")
	assert.Contains(t, out, "<pre>  a\n   b</pre>")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<!--")
	for _, gone := range []string{"h()", "x()", "y()"} {
		assert.NotContains(t, out, gone)
	}

	again := writeFile(t, out)
	var second bytes.Buffer
	require.Equal(t, exitOK, run([]string{again}, &second, &stderr))
	assert.Equal(t, out, second.String())
}

func TestRun_MissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join(t.TempDir(), "missing.html")}, &stdout, &stderr)

	assert.Equal(t, exitError, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "no such file or directory")
}

func TestRun_Directory(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{t.TempDir()}, &stdout, &stderr)

	assert.Equal(t, exitError, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "not a regular file")
}

func TestRun_MalformedHTMLIsNotAnError(t *testing.T) {
	path := writeFile(t, `<p>unclosed <b>bold <script>x()</script><td>stray`)

	var stdout, stderr bytes.Buffer
	code := run([]string{path}, &stdout, &stderr)

	require.Equal(t, exitOK, code, "stderr: %s", stderr.String())
	assert.Contains(t, stdout.String(), "unclosed")
	assert.NotContains(t, stdout.String(), "x()")
}
