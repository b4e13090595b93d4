package domain

import "github.com/ethereum/go-ethereum/common"

// BaseMainnetChainID is the network the reference registry is deployed on.
const BaseMainnetChainID uint64 = 8453

// Deployment identifies the registry contract the service is allowed to talk to.
type Deployment struct {
	Address common.Address
	Name    string
	ChainID uint64
}
