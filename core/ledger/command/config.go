package command

import (
	"encoding/hex"

	"go.dedis.ch/opcore/core/ledger"
	"go.dedis.ch/opcore/core/operation"
	"go.dedis.ch/opcore/core/txn/signed"
	"go.dedis.ch/opcore/crypto/ed25519"
	"golang.org/x/xerrors"
)

// keyFile is the YAML document produced by the key generation.
type keyFile struct {
	Account string `yaml:"account"`
	Secret  string `yaml:"secret"`
}

// genesisFile is the YAML document listing the accounts of the initial ledger.
type genesisFile struct {
	Accounts []genesisAccount `yaml:"accounts"`
}

type genesisAccount struct {
	ID      string `yaml:"id"`
	Balance int64  `yaml:"balance"`
}

// txFile is the YAML document describing a transaction to submit. The source
// defaults to the account of the first secret.
type txFile struct {
	Source     string     `yaml:"source,omitempty"`
	Nonce      uint64     `yaml:"nonce"`
	Fee        int64      `yaml:"fee"`
	Secrets    []string   `yaml:"secrets"`
	Operations []opConfig `yaml:"operations"`
}

type assetConfig struct {
	Code   string `yaml:"code"`
	Issuer string `yaml:"issuer"`
}

type signerConfig struct {
	Key    string `yaml:"key"`
	Weight uint8  `yaml:"weight"`
}

// opConfig is the union of the fields of every operation kind. Only the
// fields of the selected type are read.
type opConfig struct {
	Type   string `yaml:"type"`
	Source string `yaml:"source,omitempty"`

	Destination     string       `yaml:"destination,omitempty"`
	StartingBalance int64        `yaml:"starting_balance,omitempty"`
	Amount          int64        `yaml:"amount,omitempty"`
	Asset           *assetConfig `yaml:"asset,omitempty"`
	Limit           int64        `yaml:"limit,omitempty"`

	Trustor   string `yaml:"trustor,omitempty"`
	AssetCode string `yaml:"asset_code,omitempty"`
	Authorize bool   `yaml:"authorize,omitempty"`

	SetFlags     *uint32       `yaml:"set_flags,omitempty"`
	ClearFlags   *uint32       `yaml:"clear_flags,omitempty"`
	MasterWeight *uint8        `yaml:"master_weight,omitempty"`
	Low          *uint8        `yaml:"low,omitempty"`
	Medium       *uint8        `yaml:"medium,omitempty"`
	High         *uint8        `yaml:"high,omitempty"`
	Signer       *signerConfig `yaml:"signer,omitempty"`
	HomeDomain   *string       `yaml:"home_domain,omitempty"`

	Name  string  `yaml:"name,omitempty"`
	Value *string `yaml:"value,omitempty"`
}

// accountView is the YAML representation of an account.
type accountView struct {
	ID         string       `yaml:"id"`
	Balance    int64        `yaml:"balance"`
	SubEntries uint32       `yaml:"sub_entries"`
	Flags      uint32       `yaml:"flags"`
	HomeDomain string       `yaml:"home_domain,omitempty"`
	Thresholds []uint8      `yaml:"thresholds,flow"`
	Signers    []signerView `yaml:"signers,omitempty"`
}

type signerView struct {
	Key    string `yaml:"key"`
	Weight uint8  `yaml:"weight"`
}

func newAccountView(acc *ledger.Account) accountView {
	view := accountView{
		ID:         hex.EncodeToString(acc.ID[:]),
		Balance:    acc.Balance,
		SubEntries: acc.NumSubEntries,
		Flags:      acc.Flags,
		HomeDomain: acc.HomeDomain,
		Thresholds: []uint8{
			acc.Thresholds.Master,
			acc.Thresholds.Low,
			acc.Thresholds.Medium,
			acc.Thresholds.High,
		},
	}

	for _, s := range acc.Signers {
		view.Signers = append(view.Signers, signerView{
			Key:    hex.EncodeToString(s.Key[:]),
			Weight: s.Weight,
		})
	}

	return view
}

// makeTransaction builds and signs the transaction described by the file.
func makeTransaction(file txFile, kinds []operation.Kind) (*signed.Transaction, error) {
	signers := make([]ed25519.Signer, len(file.Secrets))

	for i, secret := range file.Secrets {
		data, err := hex.DecodeString(secret)
		if err != nil {
			return nil, xerrors.Errorf("malformed secret %d: %v", i, err)
		}

		signers[i], err = ed25519.NewSignerFromSecret(data)
		if err != nil {
			return nil, xerrors.Errorf("invalid secret %d: %v", i, err)
		}
	}

	var source ledger.AccountID
	var err error

	switch {
	case file.Source != "":
		source, err = ledger.ParseAccountID(file.Source)
		if err != nil {
			return nil, xerrors.Errorf("invalid source: %v", err)
		}
	case len(signers) > 0:
		source, err = signed.AccountOf(signers[0].GetPublicKey())
		if err != nil {
			return nil, xerrors.Errorf("invalid source: %v", err)
		}
	default:
		return nil, xerrors.New("missing source")
	}

	ops := make([]operation.Operation, len(file.Operations))
	for i, conf := range file.Operations {
		ops[i], err = makeOperation(conf, kinds)
		if err != nil {
			return nil, xerrors.Errorf("operation %d: %v", i, err)
		}
	}

	tx, err := signed.NewTransaction(source, file.Nonce,
		signed.WithOperations(ops...), signed.WithFee(file.Fee))
	if err != nil {
		return nil, xerrors.Errorf("failed to create tx: %v", err)
	}

	for _, signer := range signers {
		err = tx.Sign(signer)
		if err != nil {
			return nil, xerrors.Errorf("failed to sign: %v", err)
		}
	}

	return tx, nil
}

func makeOperation(conf opConfig, kinds []operation.Kind) (operation.Operation, error) {
	kind, err := parseKind(conf.Type, kinds)
	if err != nil {
		return operation.Operation{}, err
	}

	body, err := makeBody(kind, conf)
	if err != nil {
		return operation.Operation{}, xerrors.Errorf("invalid %v: %v", kind, err)
	}

	if conf.Source == "" {
		return operation.NewOperation(body), nil
	}

	source, err := ledger.ParseAccountID(conf.Source)
	if err != nil {
		return operation.Operation{}, xerrors.Errorf("invalid source: %v", err)
	}

	return operation.NewOperationFrom(source, body), nil
}

func parseKind(name string, kinds []operation.Kind) (operation.Kind, error) {
	for _, kind := range kinds {
		if kind.String() == name {
			return kind, nil
		}
	}

	return 0, xerrors.Errorf("unknown operation type '%s'", name)
}

func makeBody(kind operation.Kind, conf opConfig) (operation.Body, error) {
	switch kind {
	case operation.KindCreateAccount:
		dest, err := ledger.ParseAccountID(conf.Destination)
		if err != nil {
			return nil, xerrors.Errorf("destination: %v", err)
		}

		return operation.CreateAccount{Destination: dest, StartingBalance: conf.StartingBalance}, nil
	case operation.KindPayment:
		dest, err := ledger.ParseAccountID(conf.Destination)
		if err != nil {
			return nil, xerrors.Errorf("destination: %v", err)
		}

		asset, err := parseAsset(conf.Asset)
		if err != nil {
			return nil, err
		}

		return operation.Payment{Destination: dest, Asset: asset, Amount: conf.Amount}, nil
	case operation.KindChangeTrust:
		asset, err := parseAsset(conf.Asset)
		if err != nil {
			return nil, err
		}

		return operation.ChangeTrust{Line: asset, Limit: conf.Limit}, nil
	case operation.KindAllowTrust:
		trustor, err := ledger.ParseAccountID(conf.Trustor)
		if err != nil {
			return nil, xerrors.Errorf("trustor: %v", err)
		}

		return operation.AllowTrust{
			Trustor:   trustor,
			AssetCode: conf.AssetCode,
			Authorize: conf.Authorize,
		}, nil
	case operation.KindSetOptions:
		body := operation.SetOptions{
			SetFlags:     conf.SetFlags,
			ClearFlags:   conf.ClearFlags,
			MasterWeight: conf.MasterWeight,
			Low:          conf.Low,
			Medium:       conf.Medium,
			High:         conf.High,
			HomeDomain:   conf.HomeDomain,
		}

		if conf.Signer != nil {
			key, err := ledger.ParseAccountID(conf.Signer.Key)
			if err != nil {
				return nil, xerrors.Errorf("signer: %v", err)
			}

			body.Signer = &ledger.Signer{Key: key, Weight: conf.Signer.Weight}
		}

		return body, nil
	case operation.KindAccountMerge:
		dest, err := ledger.ParseAccountID(conf.Destination)
		if err != nil {
			return nil, xerrors.Errorf("destination: %v", err)
		}

		return operation.AccountMerge{Destination: dest}, nil
	case operation.KindManageData:
		body := operation.ManageData{Name: conf.Name}
		if conf.Value != nil {
			body.Value = []byte(*conf.Value)
		}

		return body, nil
	default:
		return nil, xerrors.New("unsupported kind")
	}
}

// parseAsset returns the native asset when the configuration is missing or has
// no code.
func parseAsset(conf *assetConfig) (ledger.Asset, error) {
	if conf == nil || conf.Code == "" {
		return ledger.NativeAsset(), nil
	}

	issuer, err := ledger.ParseAccountID(conf.Issuer)
	if err != nil {
		return ledger.Asset{}, xerrors.Errorf("issuer: %v", err)
	}

	return ledger.NewCredit(conf.Code, issuer), nil
}
