package ledger

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// registryABIJSON is the subset of the event NFT registry the service uses.
const registryABIJSON = `[
  {"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"mintingFee","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getTokenIdByEventCode","stateMutability":"view",
   "inputs":[{"name":"eventCode","type":"string"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getEventData","stateMutability":"view",
   "inputs":[{"name":"tokenId","type":"uint256"}],
   "outputs":[
     {"name":"eventCode","type":"string"},
     {"name":"eventName","type":"string"},
     {"name":"location","type":"string"},
     {"name":"timestamp","type":"uint256"},
     {"name":"hostName","type":"string"},
     {"name":"attendeeCount","type":"uint256"},
     {"name":"ipfsHash","type":"string"},
     {"name":"isActive","type":"bool"}
   ]},
  {"type":"function","name":"hasUserMinted","stateMutability":"view",
   "inputs":[{"name":"eventCode","type":"string"},{"name":"user","type":"address"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"registerEvent","stateMutability":"nonpayable",
   "inputs":[
     {"name":"eventCode","type":"string"},
     {"name":"eventName","type":"string"},
     {"name":"location","type":"string"},
     {"name":"timestamp","type":"uint256"},
     {"name":"hostName","type":"string"},
     {"name":"attendeeCount","type":"uint256"},
     {"name":"ipfsHash","type":"string"}
   ],
   "outputs":[]},
  {"type":"function","name":"mintEventNFT","stateMutability":"payable",
   "inputs":[{"name":"eventCode","type":"string"},{"name":"ipfsHash","type":"string"}],
   "outputs":[]}
]`

const (
	MethodName                  = "name"
	MethodOwner                 = "owner"
	MethodTotalSupply           = "totalSupply"
	MethodMintingFee            = "mintingFee"
	MethodGetTokenIDByEventCode = "getTokenIdByEventCode"
	MethodGetEventData          = "getEventData"
	MethodHasUserMinted         = "hasUserMinted"
	MethodRegisterEvent         = "registerEvent"
	MethodMintEventNFT          = "mintEventNFT"
)

var registryABI = mustParseABI(registryABIJSON)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("ledger: parse registry abi: " + err.Error())
	}
	return parsed
}
