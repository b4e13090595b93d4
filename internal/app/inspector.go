package app

import (
	"context"

	"github.com/cimillas/attendance-nft/internal/domain"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// DefaultProbeEventCode is the event code the inspector resolves when none is given.
const DefaultProbeEventCode = "B56-A64"

// Field is one inspected value, or the error reading it produced.
type Field struct {
	Value string
	Err   error
}

func fieldOf[T interface{ String() string }](v T, err error) Field {
	if err != nil {
		return Field{Err: err}
	}
	return Field{Value: v.String()}
}

// ContractReport describes what the configured address answers to.
type ContractReport struct {
	Address      common.Address
	ExpectedName string
	ChainID      uint64
	Deployed     bool
	Verified     bool
	ProbeCode    string

	Name         Field
	Owner        Field
	TotalSupply  Field
	MintingFee   Field
	ProbeTokenID Field
}

// Inspector reads the public state of the registry for diagnostics.
type Inspector struct {
	registry   Registry
	deployment domain.Deployment
}

func NewInspector(registry Registry, deployment domain.Deployment) *Inspector {
	return &Inspector{registry: registry, deployment: deployment}
}

// Inspect checks bytecode first and reads the remaining fields concurrently
// only when the contract is deployed. Field errors are reported, not returned.
func (i *Inspector) Inspect(ctx context.Context, probeCode string) (ContractReport, error) {
	if probeCode == "" {
		probeCode = DefaultProbeEventCode
	}
	ctx, span := tracer.Start(ctx, "inspector.inspect")
	defer span.End()

	report := ContractReport{
		Address:      i.registry.Address(),
		ExpectedName: i.deployment.Name,
		ChainID:      i.deployment.ChainID,
		ProbeCode:    probeCode,
	}
	deployed, err := i.registry.VerifyDeployed(ctx)
	if err != nil {
		return ContractReport{}, err
	}
	report.Deployed = deployed
	if !deployed {
		return report, nil
	}

	var g errgroup.Group
	g.Go(func() error {
		name, err := i.registry.Name(ctx)
		if err != nil {
			report.Name = Field{Err: err}
			return nil
		}
		report.Name = Field{Value: name}
		return nil
	})
	g.Go(func() error {
		report.Owner = fieldOf(i.registry.Owner(ctx))
		return nil
	})
	g.Go(func() error {
		report.TotalSupply = fieldOf(i.registry.TotalSupply(ctx))
		return nil
	})
	g.Go(func() error {
		report.MintingFee = fieldOf(i.registry.MintingFee(ctx))
		return nil
	})
	g.Go(func() error {
		report.ProbeTokenID = fieldOf(i.registry.TokenIDByEventCode(ctx, probeCode))
		return nil
	})
	_ = g.Wait()

	report.Verified = report.Name.Err == nil && report.Name.Value == i.deployment.Name
	return report, nil
}
