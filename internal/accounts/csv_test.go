package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAccounts(t *testing.T) {
	accounts := []Account{
		{ID: 1, Available: amt("1.5"), Held: amt("0"), Total: amt("1.5")},
		{ID: 2, Available: amt("10"), Held: -amt("1"), Total: amt("9"), Locked: true},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, accounts))

	want := "client,available,held,total,locked\n" +
		"1,1.5000,0.0000,1.5000,false\n" +
		"2,10.0000,-1.0000,9.0000,true\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteAccounts_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, nil))
	assert.Equal(t, Header+"\n", buf.String())
}

func TestReadAccounts(t *testing.T) {
	accounts := []Account{
		{ID: 1, Available: amt("0"), Held: amt("10"), Total: amt("10")},
		{ID: 65535, Available: -amt("0.0005"), Held: amt("0"), Total: -amt("0.0005"), Locked: true},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, accounts))

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, accounts, got)
}

func TestReadAccounts_HeaderOnly(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(Header + "\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnmarshalAccount_Errors(t *testing.T) {
	tests := []struct {
		name   string
		record []string
		want   string
	}{
		{"field count", []string{"1", "0.0000"}, "expected 5 fields"},
		{"client", []string{"x", "0", "0", "0", "false"}, "parsing client"},
		{"client range", []string{"70000", "0", "0", "0", "false"}, "parsing client"},
		{"available", []string{"1", "1.23456", "0", "0", "false"}, "parsing available"},
		{"locked", []string{"1", "0", "0", "0", "maybe"}, "parsing locked"},
	}
	for _, tt := range tests {
		_, err := UnmarshalAccount(tt.record)
		require.Error(t, err, tt.name)
		assert.Contains(t, err.Error(), tt.want, tt.name)
	}
}
