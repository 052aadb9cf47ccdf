// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/selmatch/selmatch/pkg/seleval"
	"github.com/selmatch/selmatch/pkg/selparser"
	"github.com/selmatch/selmatch/pkg/utilfn"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// jsonEval is the serialized shape of an evaluator for --json output.
type jsonEval struct {
	Kind     string     `json:"kind"`
	Value    string     `json:"value,omitempty"`
	Children []jsonEval `json:"children,omitempty"`
}

func convertEval(ev seleval.Evaluator) jsonEval {
	switch e := ev.(type) {
	case *seleval.And:
		return jsonEval{Kind: "and", Children: lo.Map(e.Evaluators, func(c seleval.Evaluator, _ int) jsonEval {
			return convertEval(c)
		})}
	case *seleval.Or:
		return jsonEval{Kind: "or", Children: lo.Map(e.Evaluators, func(c seleval.Evaluator, _ int) jsonEval {
			return convertEval(c)
		})}
	case *seleval.Not:
		return jsonEval{Kind: "not", Children: []jsonEval{convertEval(e.Inner)}}
	case *seleval.Has:
		return jsonEval{Kind: "has", Children: []jsonEval{convertEval(e.Inner)}}
	case *seleval.Parent:
		return jsonEval{Kind: "parent", Children: []jsonEval{convertEval(e.Inner)}}
	case *seleval.ImmediateParent:
		return jsonEval{Kind: "immediate-parent", Children: []jsonEval{convertEval(e.Inner)}}
	case *seleval.PreviousSibling:
		return jsonEval{Kind: "previous-sibling", Children: []jsonEval{convertEval(e.Inner)}}
	case *seleval.ImmediatePreviousSibling:
		return jsonEval{Kind: "immediate-previous-sibling", Children: []jsonEval{convertEval(e.Inner)}}
	default:
		return jsonEval{Kind: "leaf", Value: ev.String()}
	}
}

func prettyPrintEval(je jsonEval) string {
	var sb strings.Builder
	if je.Kind == "leaf" {
		sb.WriteString(fmt.Sprintf("leaf %q\n", je.Value))
	} else {
		sb.WriteString(je.Kind + "\n")
	}
	for _, child := range je.Children {
		sb.WriteString(utilfn.IndentString("  ", strings.TrimRight(prettyPrintEval(child), "\n")))
	}
	return sb.String()
}

func runParse(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	asJSON, _ := cmd.Flags().GetBool("json")

	ev, err := selparser.Parse(query)
	if err != nil {
		return err
	}

	je := convertEval(ev)
	if asJSON {
		out, err := json.MarshalIndent(je, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Printf("query: %s\n", query)
	fmt.Print(prettyPrintEval(je))
	return nil
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	rootCmd := &cobra.Command{
		Use:          "selparse [selector]",
		Short:        "Compile a CSS selector and print its evaluator tree",
		Args:         cobra.MinimumNArgs(1),
		RunE:         runParse,
		SilenceUsage: true,
	}
	rootCmd.Flags().Bool("json", false, "print the evaluator tree as JSON")

	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
