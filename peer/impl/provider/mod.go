package provider

import (
	"math/big"
	"sort"
	"sync"

	"github.com/shaanrockz/sharenet/field"
	"github.com/shaanrockz/sharenet/peer"
	"github.com/shaanrockz/sharenet/peer/impl/message"
	"github.com/shaanrockz/sharenet/share"
	"github.com/shaanrockz/sharenet/types"
	"golang.org/x/xerrors"
)

// ErrTripleReuse signals a replayed randomness request: an origin asking
// again for correlated randomness it was already served. Reuse breaks the
// secrecy of the masked openings, so the provider refuses to continue.
var ErrTripleReuse = xerrors.New("correlated randomness reuse")

// ProviderModule implements the trusted dealer: it answers triple and
// randomness requests with fresh correlated shares, each request identifier
// served exactly once.
type ProviderModule struct {
	*message.MessageModule
	conf *peer.Configuration

	f      field.Field
	served *SafeRequestLog
}

// NewProvider builds the provider module and registers its handlers.
func NewProvider(conf *peer.Configuration, messageModule *message.MessageModule) *ProviderModule {
	m := ProviderModule{
		MessageModule: messageModule,
		conf:          conf,
		f:             conf.Field,
		served:        NewSafeRequestLog(),
	}

	m.conf.MessageRegistry.RegisterMessageCallback(types.TripleRequestMessage{}, m.ProcessTripleRequestMsg)
	m.conf.MessageRegistry.RegisterMessageCallback(types.RandRequestMessage{}, m.ProcessRandRequestMsg)

	return &m
}

/** Private Helper Functions **/

// distribute splits each secret additively and sends every participant its
// shares, encrypted, through the build callback.
func (m *ProviderModule) distribute(participants []string, secrets []*share.Secret,
	build func(i int, parts [][]*big.Int) (types.Message, error)) error {

	sorted := append([]string(nil), participants...)
	sort.Strings(sorted)

	sets := make([]*share.Set, len(secrets))
	for s, secret := range secrets {
		set, err := share.Encrypt(m.f, secret, len(sorted))
		if err != nil {
			return err
		}
		sets[s] = set
	}

	for i, participant := range sorted {
		parts := make([][]*big.Int, len(sets))
		for s, set := range sets {
			parts[s] = set.Parts[i]
		}
		payload, err := build(i, parts)
		if err != nil {
			return err
		}
		payloadMarshal, err := m.CreateMsg(payload)
		if err != nil {
			return err
		}
		err = m.SendEncrypted(participant, payloadMarshal)
		if err != nil {
			return err
		}
	}
	return nil
}

// SafeRequestLog tracks which origins were served which request, to dedupe
// the per-party copies of a request and to detect replays.
type SafeRequestLog struct {
	*sync.Mutex
	served map[string]map[string]struct{}
}

// NewSafeRequestLog returns an empty log.
func NewSafeRequestLog() *SafeRequestLog {
	return &SafeRequestLog{
		Mutex:  &sync.Mutex{},
		served: make(map[string]map[string]struct{}),
	}
}

// Register records an origin's request. It reports whether this is the first
// request under the key at all, and whether this origin already requested it.
func (l *SafeRequestLog) Register(key, origin string) (first, replay bool) {
	l.Lock()
	defer l.Unlock()

	origins, ok := l.served[key]
	if !ok {
		l.served[key] = map[string]struct{}{origin: {}}
		return true, false
	}
	if _, ok := origins[origin]; ok {
		return false, true
	}
	origins[origin] = struct{}{}
	return false, false
}
