package command

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"go.dedis.ch/opcore/cli"
	"go.dedis.ch/opcore/core/ledger"
	"go.dedis.ch/opcore/core/operation"
	"go.dedis.ch/opcore/core/store/kv"
	"go.dedis.ch/opcore/core/store/mem"
	"go.dedis.ch/opcore/core/txn/signed"
	"go.dedis.ch/opcore/core/validation"
	"go.dedis.ch/opcore/core/validation/simple"
	"go.dedis.ch/opcore/crypto/ed25519"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// bucket is the name of the database bucket holding the ledger entries.
var bucket = []byte("ledger")

// action defines the different cli actions of the ledger commands. Defining
// the functions and the printer helps in testing the commands.
type action struct {
	printer io.Writer
	params  ledger.Params

	genSigner func() ed25519.Signer
	openDB    func(path string) (kv.DB, error)
	readFile  func(filename string) ([]byte, error)
	saveFile  func(path string, force bool, data []byte) error
}

func (a action) keygenAction(flags cli.Flags) error {
	signer := a.genSigner()

	secret, err := signer.MarshalBinary()
	if err != nil {
		return xerrors.Errorf("failed to marshal signer: %v", err)
	}

	id, err := signed.AccountOf(signer.GetPublicKey())
	if err != nil {
		return xerrors.Errorf("failed to get account: %v", err)
	}

	data, err := yaml.Marshal(keyFile{
		Account: hex.EncodeToString(id[:]),
		Secret:  hex.EncodeToString(secret),
	})
	if err != nil {
		return xerrors.Errorf("failed to encode key: %v", err)
	}

	switch flags.String("save") {
	case "":
		fmt.Fprint(a.printer, string(data))
	default:
		err := a.saveFile(flags.String("save"), flags.Bool("force"), data)
		if err != nil {
			return xerrors.Errorf("failed to save file: %v", err)
		}
	}

	return nil
}

func (a action) genesisAction(flags cli.Flags) error {
	data, err := a.readFile(flags.Path("config"))
	if err != nil {
		return xerrors.Errorf("failed to read config: %v", err)
	}

	var genesis genesisFile

	err = yaml.Unmarshal(data, &genesis)
	if err != nil {
		return xerrors.Errorf("failed to decode config: %v", err)
	}

	db, st, err := a.open(flags)
	if err != nil {
		return err
	}

	defer db.Close()

	delta := mem.NewDelta(st)

	for _, conf := range genesis.Accounts {
		id, err := ledger.ParseAccountID(conf.ID)
		if err != nil {
			return xerrors.Errorf("invalid account '%s': %v", conf.ID, err)
		}

		acc, err := ledger.LoadAccount(delta, id)
		if err != nil {
			return xerrors.Errorf("failed to read account: %v", err)
		}

		if acc != nil {
			return xerrors.Errorf("account %v already exists", id)
		}

		err = ledger.StoreAccount(delta, ledger.NewAccount(id, conf.Balance))
		if err != nil {
			return xerrors.Errorf("failed to store account: %v", err)
		}
	}

	err = st.Commit(delta.Apply)
	if err != nil {
		return xerrors.Errorf("failed to commit: %v", err)
	}

	fmt.Fprintf(a.printer, "%d account(s) created\n", len(genesis.Accounts))

	return nil
}

func (a action) submitAction(flags cli.Flags) error {
	txs, err := a.readTransactions(flags.StringSlice("tx"))
	if err != nil {
		return err
	}

	db, st, err := a.open(flags)
	if err != nil {
		return err
	}

	defer db.Close()

	srvc := simple.NewService(operation.NewRegistry(), a.params)

	delta := mem.NewDelta(st)

	data, err := srvc.Validate(delta, txs)
	if err != nil {
		return xerrors.Errorf("failed to validate: %v", err)
	}

	for _, res := range data.GetTransactionResults() {
		a.printResult(res)
	}

	if flags.Bool("dry-run") {
		return nil
	}

	err = st.Commit(delta.Apply)
	if err != nil {
		return xerrors.Errorf("failed to commit: %v", err)
	}

	return nil
}

func (a action) checkAction(flags cli.Flags) error {
	txs, err := a.readTransactions([]string{flags.Path("tx")})
	if err != nil {
		return err
	}

	db, st, err := a.open(flags)
	if err != nil {
		return err
	}

	defer db.Close()

	srvc := simple.NewService(operation.NewRegistry(), a.params)

	res, err := srvc.Check(st, txs[0])
	if err != nil {
		return xerrors.Errorf("failed to check: %v", err)
	}

	a.printResult(res)

	return nil
}

func (a action) accountAction(flags cli.Flags) error {
	id, err := ledger.ParseAccountID(flags.String("id"))
	if err != nil {
		return xerrors.Errorf("invalid account: %v", err)
	}

	db, st, err := a.open(flags)
	if err != nil {
		return err
	}

	defer db.Close()

	acc, err := ledger.LoadAccount(st, id)
	if err != nil {
		return xerrors.Errorf("failed to read account: %v", err)
	}

	if acc == nil {
		return xerrors.Errorf("account %v not found", id)
	}

	data, err := yaml.Marshal(newAccountView(acc))
	if err != nil {
		return xerrors.Errorf("failed to encode account: %v", err)
	}

	fmt.Fprint(a.printer, string(data))

	return nil
}

func (a action) open(flags cli.Flags) (kv.DB, kv.Store, error) {
	db, err := a.openDB(flags.Path("db"))
	if err != nil {
		return nil, kv.Store{}, xerrors.Errorf("failed to open db: %v", err)
	}

	st, err := kv.NewStore(db, bucket)
	if err != nil {
		db.Close()
		return nil, kv.Store{}, xerrors.Errorf("failed to open store: %v", err)
	}

	return db, st, nil
}

func (a action) readTransactions(paths []string) ([]validation.Transaction, error) {
	if len(paths) == 0 {
		return nil, xerrors.New("no transaction provided")
	}

	kinds := operation.NewRegistry().Kinds()
	txs := make([]validation.Transaction, len(paths))

	for i, path := range paths {
		data, err := a.readFile(path)
		if err != nil {
			return nil, xerrors.Errorf("failed to read tx: %v", err)
		}

		var file txFile

		err = yaml.Unmarshal(data, &file)
		if err != nil {
			return nil, xerrors.Errorf("failed to decode '%s': %v", path, err)
		}

		txs[i], err = makeTransaction(file, kinds)
		if err != nil {
			return nil, xerrors.Errorf("invalid tx '%s': %v", path, err)
		}
	}

	return txs, nil
}

func (a action) printResult(res validation.TransactionResult) {
	accepted, reason := res.GetStatus()

	status := "accepted"
	if !accepted {
		status = "rejected: " + reason
	}

	fmt.Fprintf(a.printer, "tx %x %s\n", res.GetTransaction().GetID(), status)

	for i, opRes := range res.GetOperationResults() {
		fmt.Fprintf(a.printer, "  [%d] %v\n", i, opRes)
	}
}

func saveToFile(path string, force bool, data []byte) error {
	if !force && fileExist(path) {
		return xerrors.Errorf("file '%s' already exist, use --force if you "+
			"want to overwrite", path)
	}

	err := os.WriteFile(path, data, 0600)
	if err != nil {
		return xerrors.Errorf("failed to write file: %v", err)
	}

	return nil
}

func fileExist(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
