package engine

import (
	"math/big"
	"sort"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"github.com/shaanrockz/sharenet/field"
	"github.com/shaanrockz/sharenet/peer"
	"github.com/shaanrockz/sharenet/peer/impl/message"
	"github.com/shaanrockz/sharenet/share"
	"github.com/shaanrockz/sharenet/types"
	"golang.org/x/xerrors"
)

// ErrProtocolTimeout signals that a party or the provider failed to respond
// within a protocol round. The invocation is dead; callers must restart it
// under a fresh identifier, never resume it.
var ErrProtocolTimeout = xerrors.New("protocol round timed out")

// ErrPartyMismatch signals binary operands that do not belong together: a
// share the party does not hold, or operands of different shapes.
var ErrPartyMismatch = xerrors.New("operands do not share a party set")

// EngineModule implements the share-level operations of a party: local
// additive arithmetic plus the interactive multiplication and comparison
// protocols.
//
// - implements peer.MPC
type EngineModule struct {
	*message.MessageModule
	conf *peer.Configuration

	f            field.Field
	participants []string
	leader       bool

	store *SafeValueStore
	opens *OpenCollector
	locks *KeyedMutex
}

// NewEngine builds the engine and registers its message handlers. It panics
// when the field is too small for the configured value range: comparisons
// need bitlen(Q) >= MaxValueBits + SecBits + 3 to open masked values without
// modular wrap.
func NewEngine(conf *peer.Configuration, messageModule *message.MessageModule) *EngineModule {
	if conf.Field.Bits() < conf.MaxValueBits+conf.SecBits+3 {
		panic(xerrors.Errorf("modulus too small for %d-bit values with %d-bit masking: %w",
			conf.MaxValueBits, conf.SecBits, field.ErrDomain))
	}

	participants := append([]string(nil), conf.Participants...)
	sort.Strings(participants)

	m := EngineModule{
		MessageModule: messageModule,
		conf:          conf,
		f:             conf.Field,
		participants:  participants,
		leader:        len(participants) > 0 && participants[0] == conf.Socket.GetAddress(),
		store:         NewSafeValueStore(),
		opens:         NewOpenCollector(),
		locks:         NewKeyedMutex(),
	}

	m.conf.MessageRegistry.RegisterMessageCallback(types.ShareMessage{}, m.ProcessShareMsg)
	m.conf.MessageRegistry.RegisterMessageCallback(types.OpenMessage{}, m.ProcessOpenMsg)
	m.conf.MessageRegistry.RegisterMessageCallback(types.TripleShareMessage{}, m.ProcessTripleShareMsg)
	m.conf.MessageRegistry.RegisterMessageCallback(types.RandShareMessage{}, m.ProcessRandShareMsg)

	return &m
}

/** Feature Functions **/

// Share implements peer.MPC. It validates the secret against the configured
// value range, splits it into one additive share per participant and sends
// every remote party its share encrypted.
func (m *EngineModule) Share(key string, secret *share.Secret) error {
	bound := new(big.Int).Lsh(big.NewInt(1), uint(m.conf.MaxValueBits))
	for _, v := range secret.Vals {
		if v.CmpAbs(bound) >= 0 {
			return xerrors.Errorf("secret element exceeds %d bits: %w",
				m.conf.MaxValueBits, field.ErrDomain)
		}
	}

	set, err := share.Encrypt(m.f, secret, len(m.participants))
	if err != nil {
		return err
	}

	unlock := m.locks.Lock(key)
	defer unlock()

	reqID := xid.New().String()
	self := m.conf.Socket.GetAddress()
	log.Info().Msgf("%s: sharing value %s to %d participants (req %s)",
		self, key, len(m.participants), reqID)

	for i, participant := range m.participants {
		if participant == self {
			m.store.Put(key, sharedValue{dims: set.Dims, vals: set.Parts[i]})
			continue
		}
		shareMsg := types.ShareMessage{
			ReqID:  reqID,
			Origin: self,
			Key:    key,
			Dims:   set.Dims,
			Values: encodeVals(set.Parts[i]),
		}
		shareMsgMarshal, err := m.CreateMsg(shareMsg)
		if err != nil {
			return err
		}
		err = m.SendEncrypted(participant, shareMsgMarshal)
		if err != nil {
			return err
		}
	}
	return nil
}

// Reveal implements peer.MPC. Every party publishes its share of the value;
// the plaintext is rebuilt from the full party set and the local entry is
// deleted.
func (m *EngineModule) Reveal(key string) (*share.Secret, error) {
	unlock := m.locks.Lock(key)
	defer unlock()

	v, err := m.getValue(key)
	if err != nil {
		return nil, err
	}

	contributions, err := m.openShares(key+"|reveal", v.vals)
	if err != nil {
		return nil, err
	}

	shares := make([][]*big.Int, 0, len(m.participants))
	for _, participant := range m.participants {
		shares = append(shares, contributions[participant])
	}
	secret, err := share.Reconstruct(m.f, len(m.participants), v.dims, shares...)
	if err != nil {
		return nil, err
	}

	m.store.Del(key)
	return secret, nil
}

// Has implements peer.MPC.
func (m *EngineModule) Has(key string) bool {
	_, ok := m.store.Get(key)
	return ok
}

/** Private Helper Functions **/

// getValue fetches a held share, waiting for one still in flight. A share
// that never arrives means the operands do not belong to this party set.
func (m *EngineModule) getValue(key string) (sharedValue, error) {
	v, err := m.store.Await(key, m.conf.ProtocolTimeout)
	if err != nil {
		return sharedValue{}, xerrors.Errorf("no share held for %s: %w", key, ErrPartyMismatch)
	}
	return v, nil
}

// getPair fetches two operands and checks they have the same shape.
func (m *EngineModule) getPair(x, y string) (sharedValue, sharedValue, error) {
	xv, err := m.getValue(x)
	if err != nil {
		return sharedValue{}, sharedValue{}, err
	}
	yv, err := m.getValue(y)
	if err != nil {
		return sharedValue{}, sharedValue{}, err
	}
	if !share.SameShape(xv.dims, yv.dims) {
		return sharedValue{}, sharedValue{}, xerrors.Errorf(
			"shape mismatch between %s and %s: %w", x, y, ErrPartyMismatch)
	}
	return xv, yv, nil
}

// openShares runs one reveal round: broadcast the local contribution under
// the open key and block until the full party set has contributed. Only
// masked or explicitly revealed values may go through here.
func (m *EngineModule) openShares(openKey string, vals []*big.Int) (map[string][]*big.Int, error) {
	self := m.conf.Socket.GetAddress()

	openMsg := types.OpenMessage{
		ReqID:  openKey,
		Origin: self,
		Key:    openKey,
		Values: encodeVals(vals),
	}
	openMsgMarshal, err := m.CreateMsg(openMsg)
	if err != nil {
		return nil, err
	}

	m.opens.Add(openKey, self, vals)
	err = m.BroadcastSigned(openMsgMarshal)
	if err != nil {
		return nil, err
	}

	contributions, err := m.opens.Collect(openKey, m.participants, m.conf.ProtocolTimeout)
	if err != nil {
		return nil, xerrors.Errorf("open round %s: %w", openKey, err)
	}
	return contributions, nil
}

// openValue opens a masked value: one open round followed by the share sum.
func (m *EngineModule) openValue(openKey string, vals []*big.Int) ([]*big.Int, error) {
	contributions, err := m.openShares(openKey, vals)
	if err != nil {
		return nil, err
	}
	out := make([]*big.Int, len(vals))
	for e := range out {
		sum := big.NewInt(0)
		for _, contribution := range contributions {
			sum = m.f.Add(sum, contribution[e])
		}
		out[e] = sum
	}
	return out, nil
}
