package header

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teranos/wsgen/transpile"
	"github.com/teranos/wsgen/transpile/js"
	"github.com/teranos/wsgen/transpile/php"
	"github.com/teranos/wsgen/transpile/python"
)

func TestAssemblePython(t *testing.T) {
	got := Assemble(python.NewDialect(), []string{
		"import ccxt.async_support",
		"from ccxt.async_support.base.ws.cache import ArrayCache",
	})

	want := []string{
		"# -*- coding: utf-8 -*-",
		"",
		"# PLEASE DO NOT EDIT THIS FILE, IT IS GENERATED AND WILL BE OVERWRITTEN:",
		"# https://github.com/ccxt/ccxt/blob/master/CONTRIBUTING.md#how-to-contribute-code",
		"",
		"import ccxt.async_support",
		"from ccxt.async_support.base.ws.cache import ArrayCache",
	}
	assert.Equal(t, want, got)
}

func TestAssemblePHP(t *testing.T) {
	got := Assemble(php.NewDialect(), nil)

	want := []string{
		"<?php",
		"",
		"// PLEASE DO NOT EDIT THIS FILE, IT IS GENERATED AND WILL BE OVERWRITTEN:",
		"// https://github.com/ccxt/ccxt/blob/master/CONTRIBUTING.md#how-to-contribute-code",
		"",
		`namespace ccxt\pro;`,
		"use Exception; // a common import",
	}
	assert.Equal(t, want, got)
}

func TestAssembleJSWithoutImports(t *testing.T) {
	got := Assemble(js.NewDialect(), nil)

	assert.Equal(t, []string{
		"// PLEASE DO NOT EDIT THIS FILE, IT IS GENERATED AND WILL BE OVERWRITTEN:",
		"// https://github.com/ccxt/ccxt/blob/master/CONTRIBUTING.md#how-to-contribute-code",
	}, got, "no pragma, no trailing blank line")
}

// Notice wording is identical across targets apart from the comment prefix
func TestNoticeWordingIsShared(t *testing.T) {
	for _, d := range []transpile.Dialect{python.NewDialect(), php.NewDialect(), js.NewDialect()} {
		lines := Notice(d)
		assert.Len(t, lines, 2)
		for i, line := range lines {
			text := strings.TrimPrefix(line, d.CommentPrefix()+" ")
			assert.Equal(t, []string{transpile.NoticeLine, transpile.NoticeURL}[i], text)
		}
	}
}

func TestAssembleIsPure(t *testing.T) {
	imports := []string{"from ccxt.pro.BarPro import BarPro"}
	d := python.NewDialect()

	first := Assemble(d, imports)
	second := Assemble(d, append([]string(nil), imports...))
	assert.Equal(t, first, second)

	_, err := transpile.NewGeneratedFile(transpile.Python, first, "class a(BarPro):\n    pass", "a.py")
	assert.NoError(t, err)
}
