package command

import (
	"bytes"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/opcore/cli"
	"go.dedis.ch/opcore/core/ledger"
	"go.dedis.ch/opcore/core/store/kv"
	"go.dedis.ch/opcore/core/txn/signed"
	"go.dedis.ch/opcore/crypto/ed25519"
	"go.dedis.ch/opcore/testing/fake"
	"go.uber.org/goleak"
	"gopkg.in/yaml.v2"
)

func TestKeygenAction(t *testing.T) {
	signer := ed25519.NewSigner()

	buf := new(bytes.Buffer)
	action := action{
		printer:   buf,
		genSigner: func() ed25519.Signer { return signer },
		saveFile:  badSaveFile,
	}

	err := action.keygenAction(cli.FlagSet{})
	require.NoError(t, err)

	var key keyFile
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &key))
	id := idOf(t, signer)
	require.Equal(t, hex.EncodeToString(id[:]), key.Account)

	secret, err := hex.DecodeString(key.Secret)
	require.NoError(t, err)

	loaded, err := ed25519.NewSignerFromSecret(secret)
	require.NoError(t, err)
	require.True(t, loaded.GetPublicKey().Equal(signer.GetPublicKey()))

	err = action.keygenAction(cli.FlagSet{"save": "/do/not/exist"})
	require.EqualError(t, err, fake.Err("failed to save file"))

	var saved []byte
	action.saveFile = func(path string, force bool, data []byte) error {
		saved = data
		return nil
	}

	err = action.keygenAction(cli.FlagSet{"save": "key.yml"})
	require.NoError(t, err)
	require.Equal(t, buf.Bytes(), saved)
}

func TestAction_Scenario(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir, err := os.MkdirTemp("", "opcore-command-")
	require.NoError(t, err)

	defer os.RemoveAll(dir)

	dbPath := filepath.Join(dir, "ledger.db")

	alice := ed25519.NewSigner()
	bob := ed25519.NewSigner()

	buf := new(bytes.Buffer)
	action := newTestAction(buf)

	genesis := writeFile(t, dir, "genesis.yml", genesisFile{
		Accounts: []genesisAccount{{ID: hexOf(t, alice), Balance: 100_000_000}},
	})

	flags := cli.FlagSet{"db": dbPath, "config": genesis}

	err = action.genesisAction(flags)
	require.NoError(t, err)
	require.Equal(t, "1 account(s) created\n", buf.String())

	err = action.genesisAction(flags)
	require.Regexp(t, "^account [0-9a-f]{8} already exists$", err)

	create := writeTx(t, dir, "create.yml", alice, opConfig{
		Type:            "create_account",
		Destination:     hexOf(t, bob),
		StartingBalance: 50_000_000,
	})

	buf.Reset()
	err = action.checkAction(cli.FlagSet{"db": dbPath, "tx": create})
	require.NoError(t, err)
	require.Contains(t, buf.String(), " accepted\n")
	require.Contains(t, buf.String(), "[0] create_account: success\n")

	buf.Reset()
	err = action.submitAction(cli.FlagSet{"db": dbPath, "tx": []string{create}, "dry-run": true})
	require.NoError(t, err)
	require.Contains(t, buf.String(), " accepted\n")

	err = action.accountAction(cli.FlagSet{"db": dbPath, "id": hexOf(t, bob)})
	require.Regexp(t, "^account [0-9a-f]{8} not found$", err)

	err = action.submitAction(cli.FlagSet{"db": dbPath, "tx": []string{create}})
	require.NoError(t, err)

	buf.Reset()
	err = action.accountAction(cli.FlagSet{"db": dbPath, "id": hexOf(t, bob)})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "balance: 50000000\n")

	// The same transaction is rejected but the fee is still paid.
	buf.Reset()
	err = action.submitAction(cli.FlagSet{"db": dbPath, "tx": []string{create}})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "rejected: operation 0 failed: ")

	buf.Reset()
	err = action.accountAction(cli.FlagSet{"db": dbPath, "id": hexOf(t, alice)})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "balance: 49999800\n")
}

func TestGenesisAction_Failures(t *testing.T) {
	dir, err := os.MkdirTemp("", "opcore-command-")
	require.NoError(t, err)

	defer os.RemoveAll(dir)

	action := newTestAction(io.Discard)
	action.readFile = badReadFile

	flags := cli.FlagSet{"db": filepath.Join(dir, "ledger.db")}

	err = action.genesisAction(flags)
	require.EqualError(t, err, fake.Err("failed to read config"))

	action.readFile = fakeReadFile("[")
	err = action.genesisAction(flags)
	require.Regexp(t, "^failed to decode config: ", err)

	action.readFile = fakeReadFile("accounts: [{id: zz}]")
	action.openDB = badOpenDB
	err = action.genesisAction(flags)
	require.EqualError(t, err, fake.Err("failed to open db"))

	action.openDB = kv.New
	err = action.genesisAction(flags)
	require.Regexp(t, "^invalid account 'zz': ", err)
}

func TestSubmitAction_Failures(t *testing.T) {
	action := newTestAction(io.Discard)
	action.readFile = badReadFile
	action.openDB = badOpenDB

	err := action.submitAction(cli.FlagSet{})
	require.EqualError(t, err, "no transaction provided")

	flags := cli.FlagSet{"tx": []string{"a.yml"}}

	err = action.submitAction(flags)
	require.EqualError(t, err, fake.Err("failed to read tx"))

	action.readFile = fakeReadFile("[")
	err = action.submitAction(flags)
	require.Regexp(t, "^failed to decode 'a.yml': ", err)

	action.readFile = fakeReadFile("nonce: 1")
	err = action.submitAction(flags)
	require.EqualError(t, err, "invalid tx 'a.yml': missing source")

	action.readFile = fakeReadFile("source: " + hexID(1))
	err = action.submitAction(flags)
	require.EqualError(t, err, fake.Err("failed to open db"))
}

func TestCheckAction_Failures(t *testing.T) {
	action := newTestAction(io.Discard)
	action.readFile = badReadFile
	action.openDB = badOpenDB

	flags := cli.FlagSet{"tx": "a.yml"}

	err := action.checkAction(flags)
	require.EqualError(t, err, fake.Err("failed to read tx"))

	action.readFile = fakeReadFile("source: " + hexID(1))
	err = action.checkAction(flags)
	require.EqualError(t, err, fake.Err("failed to open db"))
}

func TestAccountAction_Failures(t *testing.T) {
	action := newTestAction(io.Discard)
	action.openDB = badOpenDB

	err := action.accountAction(cli.FlagSet{"id": "zz"})
	require.Regexp(t, "^invalid account: ", err)

	err = action.accountAction(cli.FlagSet{"id": hexID(1)})
	require.EqualError(t, err, fake.Err("failed to open db"))
}

func TestSaveToFile(t *testing.T) {
	path, err := os.MkdirTemp("", "opcore-test-")
	require.NoError(t, err)

	defer os.RemoveAll(path)

	file := filepath.Join(path, "test")
	err = saveToFile(file, false, []byte{1})
	require.NoError(t, err)

	res, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Equal(t, []byte{1}, res)

	err = saveToFile(file, false, nil)
	require.Regexp(t, "^file '.*' already exist, use --force if you want to overwrite$", err)

	err = saveToFile("/not/exist", true, nil)
	require.Regexp(t, "^failed to write file:", err)

	err = saveToFile(file, true, []byte{2})
	require.NoError(t, err)

	res, err = os.ReadFile(file)
	require.NoError(t, err)
	require.Equal(t, []byte{2}, res)
}

// -----------------------------------------------------------------------------
// Utility functions

func newTestAction(out io.Writer) action {
	return action{
		printer:   out,
		params:    ledger.DefaultParams(),
		genSigner: ed25519.NewSigner,
		openDB:    kv.New,
		readFile:  os.ReadFile,
		saveFile:  saveToFile,
	}
}

func idOf(t *testing.T, signer ed25519.Signer) ledger.AccountID {
	id, err := signed.AccountOf(signer.GetPublicKey())
	require.NoError(t, err)

	return id
}

func hexOf(t *testing.T, signer ed25519.Signer) string {
	id := idOf(t, signer)
	return hex.EncodeToString(id[:])
}

func writeFile(t *testing.T, dir, name string, v interface{}) string {
	data, err := yaml.Marshal(v)
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0600))

	return path
}

func writeTx(t *testing.T, dir, name string, signer ed25519.Signer, ops ...opConfig) string {
	secret, err := signer.MarshalBinary()
	require.NoError(t, err)

	return writeFile(t, dir, name, txFile{
		Nonce:      1,
		Fee:        100,
		Secrets:    []string{hex.EncodeToString(secret)},
		Operations: ops,
	})
}

func badSaveFile(path string, force bool, data []byte) error {
	return fake.GetError()
}

func badReadFile(string) ([]byte, error) {
	return nil, fake.GetError()
}

func fakeReadFile(content string) func(string) ([]byte, error) {
	return func(string) ([]byte, error) {
		return []byte(content), nil
	}
}

func badOpenDB(string) (kv.DB, error) {
	return nil, fake.GetError()
}
