package app

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/cimillas/attendance-nft/internal/domain"
	"github.com/ethereum/go-ethereum/common"
)

var (
	registryAddress = common.HexToAddress("0xef83c6e7953d028d637e416f581ae2fa836ebae8")
	ownerAccount    = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	otherAccount    = common.HexToAddress("0x00000000000000000000000000000000000000bb")

	testDeployment = domain.Deployment{
		Address: registryAddress,
		Name:    "EthSafari Event NFTs V2",
		ChainID: domain.BaseMainnetChainID,
	}
)

type mintKey struct {
	code    string
	account common.Address
}

// fakeChain is an in-memory registry contract with a connected wallet.
// Transactions are mined on the first receipt read unless held.
type fakeChain struct {
	mu sync.Mutex

	deployed bool
	name     string
	owner    common.Address
	fee      *big.Int

	events map[string]domain.EventRecord
	minted map[mintKey]bool
	nextID int64

	account    common.Address
	accountErr error
	networkID  uint64
	signErr    error
	revertNext bool
	holdMining bool

	revertReason string
	explainErr   error

	readErrs map[string]error

	pendingRegister map[string]domain.EventRecord
	pendingTx       map[common.Hash]func() bool
	receipts        map[common.Hash]domain.Receipt
	block           uint64

	calls []string
	sent  []domain.CallSpec
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		deployed:        true,
		name:            testDeployment.Name,
		owner:           ownerAccount,
		fee:             big.NewInt(100000000000000),
		events:          map[string]domain.EventRecord{},
		minted:          map[mintKey]bool{},
		nextID:          1,
		account:         ownerAccount,
		networkID:       domain.BaseMainnetChainID,
		readErrs:        map[string]error{},
		pendingRegister: map[string]domain.EventRecord{},
		pendingTx:       map[common.Hash]func() bool{},
		receipts:        map[common.Hash]domain.Receipt{},
		block:           100,
	}
}

func (c *fakeChain) register(rec domain.EventRecord) *big.Int {
	id := big.NewInt(c.nextID)
	c.nextID++
	rec.TokenID = id
	c.events[rec.EventCode] = rec
	return id
}

func (c *fakeChain) track(name string) error {
	c.calls = append(c.calls, name)
	return c.readErrs[name]
}

func (c *fakeChain) called(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.calls {
		if call == name {
			n++
		}
	}
	return n
}

func (c *fakeChain) callLog() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *fakeChain) Address() common.Address { return registryAddress }

func (c *fakeChain) VerifyDeployed(context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.track("getCode"); err != nil {
		return false, err
	}
	return c.deployed, nil
}

func (c *fakeChain) Name(context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.track("name"); err != nil {
		return "", err
	}
	return c.name, nil
}

func (c *fakeChain) Owner(context.Context) (common.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.track("owner"); err != nil {
		return common.Address{}, err
	}
	return c.owner, nil
}

func (c *fakeChain) TotalSupply(context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.track("totalSupply"); err != nil {
		return nil, err
	}
	n := int64(0)
	for _, minted := range c.minted {
		if minted {
			n++
		}
	}
	return big.NewInt(n), nil
}

func (c *fakeChain) MintingFee(context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.track("mintingFee"); err != nil {
		return nil, err
	}
	return new(big.Int).Set(c.fee), nil
}

func (c *fakeChain) TokenIDByEventCode(_ context.Context, code string) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.track("getTokenIdByEventCode"); err != nil {
		return nil, err
	}
	rec, ok := c.events[code]
	if !ok {
		return new(big.Int), nil
	}
	return new(big.Int).Set(rec.TokenID), nil
}

func (c *fakeChain) EventData(_ context.Context, tokenID *big.Int) (domain.EventRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.track("getEventData"); err != nil {
		return domain.EventRecord{}, err
	}
	for _, rec := range c.events {
		if rec.TokenID.Cmp(tokenID) == 0 {
			return rec, nil
		}
	}
	return domain.EventRecord{TokenID: tokenID}, nil
}

func (c *fakeChain) HasUserMinted(_ context.Context, code string, account common.Address) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.track("hasUserMinted"); err != nil {
		return false, err
	}
	return c.minted[mintKey{code, account}], nil
}

func (c *fakeChain) RegisterEventCall(rec domain.EventRecord) (domain.CallSpec, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingRegister[rec.EventCode] = rec
	return domain.CallSpec{Contract: registryAddress, Method: "registerEvent", EventCode: rec.EventCode, Data: []byte(rec.EventCode), Value: new(big.Int)}, nil
}

func (c *fakeChain) MintEventCall(code, contentHash string, fee *big.Int) (domain.CallSpec, error) {
	return domain.CallSpec{Contract: registryAddress, Method: "mintEventNFT", EventCode: code, Data: []byte(code + "|" + contentHash), Value: new(big.Int).Set(fee)}, nil
}

func (c *fakeChain) CurrentAccount(context.Context) (common.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "currentAccount")
	if c.accountErr != nil {
		return common.Address{}, c.accountErr
	}
	return c.account, nil
}

func (c *fakeChain) NetworkID(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "networkId")
	return c.networkID, nil
}

// SignAndSend queues the call; its effect applies when the receipt is first read.
func (c *fakeChain) SignAndSend(_ context.Context, spec domain.CallSpec) (domain.TxHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "signAndSend")
	if c.signErr != nil {
		return domain.TxHandle{}, c.signErr
	}
	c.sent = append(c.sent, spec)
	hash := common.BigToHash(big.NewInt(int64(len(c.sent))))

	revert := c.revertNext
	c.revertNext = false
	account := c.account
	c.pendingTx[hash] = func() bool {
		if revert {
			return false
		}
		switch spec.Method {
		case "registerEvent":
			if _, exists := c.events[spec.EventCode]; exists || account != c.owner {
				return false
			}
			c.register(c.pendingRegister[spec.EventCode])
		case "mintEventNFT":
			key := mintKey{spec.EventCode, account}
			if c.minted[key] || spec.Value.Cmp(c.fee) < 0 {
				return false
			}
			c.minted[key] = true
		default:
			return false
		}
		return true
	}
	return domain.TxHandle{Hash: hash, From: account, Nonce: uint64(len(c.sent) - 1), SubmittedAt: time.Date(2025, 9, 12, 15, 0, 0, 0, time.UTC)}, nil
}

func (c *fakeChain) Receipt(_ context.Context, hash common.Hash) (domain.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "getReceipt")
	if err := c.readErrs["getReceipt"]; err != nil {
		return domain.Receipt{}, err
	}
	if r, ok := c.receipts[hash]; ok {
		return r, nil
	}
	apply, ok := c.pendingTx[hash]
	if !ok || c.holdMining {
		return domain.Receipt{}, domain.ErrReceiptNotFound
	}
	delete(c.pendingTx, hash)
	c.block++
	r := domain.Receipt{TxHash: hash, Status: domain.ReceiptSuccess, BlockNumber: c.block, GasUsed: 21000}
	if !apply() {
		r.Status = domain.ReceiptReverted
	}
	c.receipts[hash] = r
	return r, nil
}

func (c *fakeChain) RevertReason(_ context.Context, _ common.Address, _ domain.CallSpec, _ uint64) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "replayCall")
	return c.revertReason, c.explainErr
}

// fakeJournal is an in-memory submission journal.
type fakeJournal struct {
	mu      sync.Mutex
	subs    map[common.Hash]domain.Submission
	updates []domain.SubmissionUpdate
	failAll bool
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{subs: map[common.Hash]domain.Submission{}}
}

func (j *fakeJournal) RecordSubmission(_ context.Context, sub domain.Submission) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.failAll {
		return errors.New("journal down")
	}
	j.subs[sub.TxHash] = sub
	return nil
}

func (j *fakeJournal) UpdateSubmissionStatus(_ context.Context, u domain.SubmissionUpdate) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.failAll {
		return errors.New("journal down")
	}
	sub, ok := j.subs[u.TxHash]
	if !ok {
		return domain.ErrSubmissionNotFound
	}
	sub.Status = u.Status
	sub.BlockNumber = u.BlockNumber
	sub.LastError = u.LastError
	sub.UpdatedAt = u.UpdatedAt
	j.subs[u.TxHash] = sub
	j.updates = append(j.updates, u)
	return nil
}

func (j *fakeJournal) GetSubmission(_ context.Context, hash common.Hash) (domain.Submission, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	sub, ok := j.subs[hash]
	if !ok {
		return domain.Submission{}, fmt.Errorf("%w: %s", domain.ErrSubmissionNotFound, hash.Hex())
	}
	return sub, nil
}

type fakeAggregates struct {
	mu    sync.Mutex
	total *big.Int
	sets  int
}

func (a *fakeAggregates) TotalMinted(context.Context) (*big.Int, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.total == nil {
		return nil, false, nil
	}
	return new(big.Int).Set(a.total), true, nil
}

func (a *fakeAggregates) SetTotalMinted(_ context.Context, total *big.Int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.total = new(big.Int).Set(total)
	a.sets++
	return nil
}
