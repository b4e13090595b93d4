package app

import (
	"context"
	"log"
	"math/big"

	"github.com/cimillas/attendance-nft/internal/domain"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// EventView is everything a mint page shows about one event code.
type EventView struct {
	EventCode   string
	TokenID     *big.Int
	Event       *domain.EventRecord
	MintingFee  *big.Int
	TotalMinted *big.Int
	// Mint is set only when the lookup named an account.
	Mint *domain.MintRecord
}

func (v EventView) Registered() bool {
	return domain.IsRegisteredTokenID(v.TokenID)
}

// EventLookup reads an event and its mint context without caching anything
// except the total minted aggregate.
type EventLookup struct {
	registry   Registry
	aggregates AggregateCache
	logger     *log.Logger
}

func NewEventLookup(registry Registry, aggregates AggregateCache, logger *log.Logger) *EventLookup {
	if logger == nil {
		logger = log.Default()
	}
	return &EventLookup{registry: registry, aggregates: aggregates, logger: logger}
}

// Get returns the view for code. An unregistered code is a valid view with a
// zero token id; errors are always read failures.
func (l *EventLookup) Get(ctx context.Context, code string, account *common.Address) (EventView, error) {
	code, err := domain.NormalizeEventCode(code)
	if err != nil {
		return EventView{}, err
	}
	ctx, span := tracer.Start(ctx, "event_lookup.get")
	defer span.End()

	tokenID, err := l.registry.TokenIDByEventCode(ctx, code)
	if err != nil {
		return EventView{}, err
	}
	view := EventView{EventCode: code, TokenID: tokenID}

	g, gctx := errgroup.WithContext(ctx)
	if view.Registered() {
		g.Go(func() error {
			rec, err := l.registry.EventData(gctx, tokenID)
			if err != nil {
				return err
			}
			view.Event = &rec
			return nil
		})
	}
	g.Go(func() error {
		fee, err := l.registry.MintingFee(gctx)
		if err != nil {
			return err
		}
		view.MintingFee = fee
		return nil
	})
	g.Go(func() error {
		total, err := l.totalMinted(gctx)
		if err != nil {
			return err
		}
		view.TotalMinted = total
		return nil
	})
	if account != nil {
		mint := &domain.MintRecord{EventCode: code, Account: *account}
		view.Mint = mint
		g.Go(func() error {
			minted, err := l.registry.HasUserMinted(gctx, code, mint.Account)
			if err != nil {
				return err
			}
			mint.HasMinted = minted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return EventView{}, err
	}
	return view, nil
}

func (l *EventLookup) totalMinted(ctx context.Context) (*big.Int, error) {
	if l.aggregates != nil {
		total, ok, err := l.aggregates.TotalMinted(ctx)
		if err != nil {
			l.logger.Printf("WARN: read cached total minted: %v", err)
		} else if ok {
			return total, nil
		}
	}
	total, err := l.registry.TotalSupply(ctx)
	if err != nil {
		return nil, err
	}
	if l.aggregates != nil {
		if err := l.aggregates.SetTotalMinted(ctx, total); err != nil {
			l.logger.Printf("WARN: cache total minted: %v", err)
		}
	}
	return total, nil
}
