package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/shaanrockz/sharenet/field"
	"github.com/shaanrockz/sharenet/peer"
	"github.com/shaanrockz/sharenet/share"
)

// -----------------------------------------------------------------------------
// CMD Actions

func shareValue(node peer.Peer) error {
	key, err := askString("Identifier of the value:")
	if err != nil {
		return err
	}
	valueStr, err := askString("Value to share:")
	if err != nil {
		return err
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return err
	}

	err = node.Share(key, share.NewScalar(value))
	if err != nil {
		return err
	}
	fmt.Printf("shared %s\n", key)
	return nil
}

func arithmetic(node peer.Peer) error {
	var op string
	opPrompt := &survey.Select{
		Message: "Which operation ?",
		Options: []string{"add", "sub", "mul"},
	}
	err := survey.AskOne(opPrompt, &op)
	if err != nil {
		return err
	}

	res, x, y, err := askTriple()
	if err != nil {
		return err
	}

	switch op {
	case "add":
		err = node.Add(res, x, y)
	case "sub":
		err = node.Sub(res, x, y)
	case "mul":
		err = node.Mul(res, x, y)
	}
	if err != nil {
		return err
	}
	fmt.Printf("computed %s = %s %s %s\n", res, x, op, y)
	return nil
}

func compare(node peer.Peer) error {
	var op string
	opPrompt := &survey.Select{
		Message: "Which comparison ?",
		Options: []string{"greater_than", "less_equal", "equal"},
	}
	err := survey.AskOne(opPrompt, &op)
	if err != nil {
		return err
	}

	res, x, y, err := askTriple()
	if err != nil {
		return err
	}

	switch op {
	case "greater_than":
		err = node.GreaterThan(res, x, y)
	case "less_equal":
		err = node.LessEqual(res, x, y)
	case "equal":
		err = node.Equal(res, x, y)
	}
	if err != nil {
		return err
	}
	fmt.Printf("computed %s = %s(%s, %s)\n", res, op, x, y)
	return nil
}

func revealValue(node peer.Peer) error {
	key, err := askString("Identifier of the value:")
	if err != nil {
		return err
	}

	secret, err := node.Reveal(key)
	if err != nil {
		return err
	}

	decoded := secret.Centered(field.Default())
	for _, v := range decoded.Vals {
		fmt.Printf("%s = %s\n", key, v.String())
	}
	return nil
}

func exitNode(node peer.Peer) error {
	err := node.Stop()
	if err != nil {
		fmt.Printf("failed to stop node: %v\n", err)
	}
	fmt.Println("bye 👋")
	os.Exit(0)
	return nil
}

// -----------------------------------------------------------------------------
// Utils

func askString(message string) (string, error) {
	answer := ""
	err := survey.AskOne(&survey.Input{Message: message}, &answer)
	return answer, err
}

func askTriple() (res, x, y string, err error) {
	res, err = askString("Identifier of the result:")
	if err != nil {
		return
	}
	x, err = askString("First operand:")
	if err != nil {
		return
	}
	y, err = askString("Second operand:")
	return
}
