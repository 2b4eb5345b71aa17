package cli

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/abiiranathan/goflag"
	"github.com/abiiranathan/pdfterms/terms"
)

func exitOnError(err error) {
	if err != nil {
		log.Fatalln(err)
	}
}

func DefineFlags(config *Config, runserver func()) *goflag.Context {
	// Flags required by multiple subcomands
	termsFlag := goflag.Flag{
		FlagType:  goflag.FlagString,
		Name:      "terms",
		ShortName: "T",
		Value:     &config.TermsFile,
		Usage:     "JSON or YAML file with the term groups",
		Required:  false,
		Validator: nil,
	}

	categoryFlag := goflag.Flag{
		FlagType:  goflag.FlagString,
		Name:      "category",
		ShortName: "k",
		Value:     &config.Category,
		Usage:     "The category name",
		Required:  true,
		Validator: nil,
	}

	questionFlag := goflag.Flag{
		FlagType:  goflag.FlagString,
		Name:      "question",
		ShortName: "q",
		Value:     &config.Question,
		Usage:     "The question within the category",
		Required:  true,
		Validator: nil,
	}

	// Create flag context.
	ctx := goflag.NewContext()

	// global flags
	ctx.AddFlag(goflag.FlagInt, "concurrency", "c",
		&config.MaxConcurrency,
		"No of pages to be searched at once",
		false, goflag.Min(1), goflag.Max(100))

	ctx.AddFlag(goflag.FlagString, "log-level", "L", &config.Log.Level,
		"Log level: debug, info, warn or error", false)

	ctx.AddFlag(goflag.FlagString, "language", "l", &config.Language,
		"ISO 639-1 language of the documents", false)

	// register subcommands
	ctx.AddSubCommand("search", "Search a PDF or text file for the pages matching a question", func() {
		sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		exitOnError(RunSearch(sigctx, config, NewEngine(config, nil), os.Stdout))
	}).AddFlag(goflag.FlagFilePath, "file", "f", &config.Filename, "The PDF or text file to search", true).
		AddFlag(goflag.FlagString, "category", "k", &config.Category, "The category of the question", false).
		AddFlag(goflag.FlagString, "question", "q", &config.Question, "The question whose term groups are searched", false).
		AddFlag(goflag.FlagString, "groups", "g", &config.Groups, `Term groups instead of a question: "a, b; c"`, false).
		AddFlag(goflag.FlagString, "mode", "m", &config.Mode, "Matching mode: exact, fuzzy or semantic", false).
		AddFlag(goflag.FlagString, "threshold", "t", &config.Threshold, "Fuzzy (50-100) or semantic (0.5-1.0) threshold", false).
		AddFlag(goflag.FlagBool, "normalize", "n", &config.Normalize, "Stem and drop stop words before exact or fuzzy matching", false).
		AddFlag(goflag.FlagBool, "highlight", "H", &config.Highlight, "Print the matched terms in context", false).
		AddFlagPtr(&termsFlag)

	ctx.AddSubCommand("categories", "List the categories", func() {
		exitOnError(ListCategories(config, os.Stdout))
	}).AddFlagPtr(&termsFlag)

	ctx.AddSubCommand("questions", "List the questions of a category with their term groups", func() {
		exitOnError(ListQuestions(config, os.Stdout))
	}).AddFlagPtr(&categoryFlag).AddFlagPtr(&termsFlag)

	ctx.AddSubCommand("add_category", "Add a category", func() {
		exitOnError(EditTerms(config, func(s *terms.Store) error {
			return s.AddCategory(config.Category)
		}))
	}).AddFlagPtr(&categoryFlag).AddFlagPtr(&termsFlag)

	ctx.AddSubCommand("remove_category", "Remove a category and all its questions", func() {
		exitOnError(EditTerms(config, func(s *terms.Store) error {
			return s.RemoveCategory(config.Category)
		}))
	}).AddFlagPtr(&categoryFlag).AddFlagPtr(&termsFlag)

	ctx.AddSubCommand("add_question", "Add a question to a category", func() {
		exitOnError(EditTerms(config, func(s *terms.Store) error {
			return s.AddQuestion(config.Category, config.Question)
		}))
	}).AddFlagPtr(&categoryFlag).AddFlagPtr(&questionFlag).AddFlagPtr(&termsFlag)

	ctx.AddSubCommand("remove_question", "Remove a question and its term groups", func() {
		exitOnError(EditTerms(config, func(s *terms.Store) error {
			return s.RemoveQuestion(config.Category, config.Question)
		}))
	}).AddFlagPtr(&categoryFlag).AddFlagPtr(&questionFlag).AddFlagPtr(&termsFlag)

	ctx.AddSubCommand("add_group", "Append a term group to a question", func() {
		exitOnError(EditTerms(config, func(s *terms.Store) error {
			index, err := s.AddGroup(config.Category, config.Question, terms.ParseGroup(config.Groups))
			if err == nil {
				log.Printf("Added group %d\n", index+1)
			}
			return err
		}))
	}).AddFlagPtr(&categoryFlag).AddFlagPtr(&questionFlag).
		AddFlag(goflag.FlagString, "group", "g", &config.Groups, `Comma separated terms: "a, b, c"`, true).
		AddFlagPtr(&termsFlag)

	ctx.AddSubCommand("remove_group", "Remove a term group from a question", func() {
		exitOnError(EditTerms(config, func(s *terms.Store) error {
			// Groups are numbered from 1 on the command line.
			return s.RemoveGroup(config.Category, config.Question, config.GroupIndex-1)
		}))
	}).AddFlagPtr(&categoryFlag).AddFlagPtr(&questionFlag).
		AddFlag(goflag.FlagInt, "index", "i", &config.GroupIndex, "The group number as listed by questions", true, goflag.Min(1)).
		AddFlagPtr(&termsFlag)

	// Run server
	ctx.AddSubCommand("runserver", "Start an Http server for search", runserver).
		AddFlag(goflag.FlagInt, "port", "p", &config.Port, "The port to run the server on", false).
		AddFlag(goflag.FlagDirPath, "documents", "d", &config.DocumentsDir, "Directory searched documents are resolved against", false).
		AddFlagPtr(&termsFlag)

	return ctx
}
