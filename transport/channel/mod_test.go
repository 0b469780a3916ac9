package channel

import (
	"testing"
	"time"

	"github.com/shaanrockz/sharenet/transport"
	"github.com/stretchr/testify/require"
)

func Test_Channel_Send_Recv(t *testing.T) {
	transp := NewTransport()

	sock1, err := transp.CreateSocket("127.0.0.1:0")
	require.NoError(t, err)
	sock2, err := transp.CreateSocket("127.0.0.1:0")
	require.NoError(t, err)
	require.NotEqual(t, sock1.GetAddress(), sock2.GetAddress())

	header := transport.NewHeader(sock1.GetAddress(), sock2.GetAddress())
	pkt := transport.Packet{
		Header: &header,
		Msg:    &transport.Message{Type: "open", Payload: []byte(`{}`)},
	}

	err = sock1.Send(sock2.GetAddress(), pkt, time.Second)
	require.NoError(t, err)

	received, err := sock2.Recv(time.Second)
	require.NoError(t, err)
	require.Equal(t, pkt.Header.Source, received.Header.Source)
	require.Equal(t, "open", received.Msg.Type)
}

func Test_Channel_Recv_Timeout(t *testing.T) {
	transp := NewTransport()

	sock, err := transp.CreateSocket("127.0.0.1:0")
	require.NoError(t, err)

	_, err = sock.Recv(time.Millisecond * 50)
	require.ErrorIs(t, err, transport.TimeoutError(0))
}

func Test_Channel_Send_Unknown_Destination(t *testing.T) {
	transp := NewTransport()

	sock, err := transp.CreateSocket("127.0.0.1:0")
	require.NoError(t, err)

	header := transport.NewHeader(sock.GetAddress(), "127.0.0.1:9")
	pkt := transport.Packet{
		Header: &header,
		Msg:    &transport.Message{Type: "open", Payload: []byte(`{}`)},
	}
	err = sock.Send("127.0.0.1:9", pkt, time.Second)
	require.Error(t, err)
}

func Test_Channel_Close(t *testing.T) {
	transp := NewTransport()

	sock, err := transp.CreateSocket("127.0.0.1:2000")
	require.NoError(t, err)
	require.NoError(t, sock.Close())
	require.Error(t, sock.Close())

	// address is free again
	_, err = transp.CreateSocket("127.0.0.1:2000")
	require.NoError(t, err)
}
