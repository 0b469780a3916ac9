package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/shaanrockz/sharenet/field"
	"github.com/shaanrockz/sharenet/peer"
	"github.com/shaanrockz/sharenet/peer/impl"
	"github.com/shaanrockz/sharenet/registry"
	"github.com/shaanrockz/sharenet/transport/udp"
)

const defaultMaxValueBits = 32
const defaultSecBits = 40

// -----------------------------------------------------------------------------
// Node CMD Prompt

var prompt = &survey.Select{
	Message: "What do you want to do ?",
	Options: actionOpts,
}

var actionOpts = []string{
	"🌱 Share a value",
	"🌾 Add / Sub / Mul",
	"🌵 Compare",
	"🌻 Reveal a value",
	"🍃 Exit",
}

var actions = map[string]func(peer.Peer) error{
	actionOpts[0]: shareValue,
	actionOpts[1]: arithmetic,
	actionOpts[2]: compare,
	actionOpts[3]: revealValue,
	actionOpts[4]: exitNode,
}

// -----------------------------------------------------------------------------
// Start CMD

// StartNodeCMD starts a party node over UDP and drops into the action loop.
func StartNodeCMD(port int, peers []string, providerAddr string) {
	conf, err := buildConf(port, peers, providerAddr)
	if err != nil {
		fmt.Println(err)
		return
	}

	node := impl.NewPeer(conf)
	err = node.Start()
	if err != nil {
		fmt.Println(err)
		return
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		exitNode(node)
	}()

	fmt.Println("##########################################")
	fmt.Println("######     Starting a party node    ######")
	fmt.Println("##########################################")
	fmt.Println("Node running on address: ", node.GetAddr())
	fmt.Println()

	var action string
	for {
		err := survey.AskOne(prompt, &action)
		if err != nil {
			fmt.Println(err)
			return
		}

		method := actions[action]
		err = method(node)
		if err != nil {
			fmt.Println(err)
		}
	}
}

// StartProviderCMD starts a crypto provider over UDP and blocks until
// interrupted.
func StartProviderCMD(port int, peers []string) {
	conf, err := buildConf(port, peers, "")
	if err != nil {
		fmt.Println(err)
		return
	}

	prov := impl.NewProvider(conf)
	err = prov.Start()
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("##########################################")
	fmt.Println("######    Starting the provider     ######")
	fmt.Println("##########################################")
	fmt.Println("Provider running on address: ", prov.GetAddr())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	err = prov.Stop()
	if err != nil {
		fmt.Println(err)
	}
	fmt.Println("bye 👋")
}

func buildConf(port int, peers []string, providerAddr string) (peer.Configuration, error) {
	transp := udp.NewUDP()
	socket, err := transp.CreateSocket(fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return peer.Configuration{}, err
	}

	return peer.Configuration{
		Socket:          socket,
		MessageRegistry: registry.NewRegistry(),
		Field:           field.Default(),
		MaxValueBits:    defaultMaxValueBits,
		SecBits:         defaultSecBits,
		Participants:    peers,
		ProviderAddr:    providerAddr,
		SendTimeout:     time.Second * 5,
		ProtocolTimeout: time.Second * 120,
	}, nil
}
