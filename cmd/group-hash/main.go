// Command group-hash turns id=password pairs into the GROUPS value the chat
// server reads. Pairs come from the arguments, or one per line on stdin.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/crypto/bcrypt"

	"uk.co.dudmesh.groupchat/internal/registry"
)

var errMalformedPair = errors.New("expected id=password")

type groupHash struct {
	ID   string
	Hash string
}

func parsePair(pair string) (string, string, error) {
	id, password, ok := strings.Cut(pair, "=")
	id = strings.TrimSpace(id)
	if !ok || id == "" || password == "" {
		return "", "", fmt.Errorf("%q: %w", pair, errMalformedPair)
	}
	return id, password, nil
}

func hashGroups(pairs []string, cost int) ([]groupHash, error) {
	out := make([]groupHash, 0, len(pairs))
	seen := map[string]bool{}
	for _, pair := range pairs {
		id, password, err := parsePair(pair)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			return nil, fmt.Errorf("group %q given twice", id)
		}
		seen[id] = true

		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return nil, fmt.Errorf("hashing group %q: %w", id, err)
		}
		out = append(out, groupHash{ID: id, Hash: registry.EncodeHash(hash)})
	}
	return out, nil
}

func envLine(groups []groupHash) string {
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = g.ID + ":" + g.Hash
	}
	return "GROUPS=" + strings.Join(parts, ",")
}

func readPairs(r io.Reader) ([]string, error) {
	var pairs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pairs = append(pairs, line)
	}
	return pairs, scanner.Err()
}

func printTable(w io.Writer, groups []groupHash) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Group", "Hash"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, g := range groups {
		table.Append([]string{g.ID, g.Hash})
	}
	table.Render()
}

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	quiet := flag.Bool("q", false, "print only the GROUPS line")
	flag.Parse()

	pairs := flag.Args()
	if len(pairs) == 0 {
		var err error
		pairs, err = readPairs(os.Stdin)
		if err != nil {
			color.Red.Printf("reading stdin: %v\n", err)
			os.Exit(1)
		}
	}

	groups, err := hashGroups(pairs, *cost)
	if err != nil {
		color.Red.Printf("%v\n", err)
		os.Exit(1)
	}
	if len(groups) == 0 {
		color.Red.Println("no groups given")
		os.Exit(1)
	}

	if *quiet {
		fmt.Println(envLine(groups))
		return
	}
	printTable(os.Stdout, groups)
	color.Green.Println(envLine(groups))
}
