package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/render"
	"github.com/spigell/resume-screener/internal/resume"
	"github.com/spigell/resume-screener/internal/session"
)

const (
	PromptAddFiles      = "Add files"
	PromptRemoveFile    = "Remove a staged file"
	PromptClearFiles    = "Clear staged files"
	PromptAddSkill      = "Add required skill"
	PromptRemoveSkill   = "Remove required skill"
	PromptMatchingOnly  = "Show only matching résumés"
	PromptShowAll       = "Show all résumés"
	PromptDetails       = "Show or hide details"
	PromptWriteReport   = "Write report to file"
	PromptResultsToFile = "Dump results to file"
	PromptExit          = "Exit"
	PromptBack          = "back"
	defaultReportName   = "resume-report.html"
)

var errExit = errors.New("exit requested")

// runInteractive drives the session from a promptui menu until the user exits.
func runInteractive(ctx context.Context, sess *session.Session, config *Config, logger *zap.Logger) error {
	printSelection(stdout, sess.Selection())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		menu := promptui.Select{
			Label: "Choose an action",
			Items: menuItems(sess),
			Size:  12,
		}

		_, action, err := menu.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}

		if err := handleAction(ctx, action, sess, config, logger); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}

		sess.Flush()
	}
}

func menuItems(sess *session.Session) []string {
	selection := sess.Selection()

	items := make([]string, 0, 12)
	if selection.SubmitEnabled {
		items = append(items, selection.SubmitLabel)
	}
	items = append(items, PromptAddFiles)
	if selection.Count > 0 {
		items = append(items, PromptRemoveFile, PromptClearFiles)
	}

	items = append(items, PromptAddSkill)
	if len(sess.Skills()) > 0 {
		items = append(items, PromptRemoveSkill)
	}

	if len(sess.Results()) > 0 {
		if sess.MatchingOnly() {
			items = append(items, PromptShowAll)
		} else {
			items = append(items, PromptMatchingOnly)
		}
		items = append(items, PromptDetails, PromptWriteReport, PromptResultsToFile)
	}

	return append(items, PromptExit)
}

func handleAction(ctx context.Context, action string, sess *session.Session, config *Config, logger *zap.Logger) error {
	switch action {
	case sess.Selection().SubmitLabel:
		if _, err := sess.Submit(ctx); err != nil {
			logger.Warn("upload finished with errors", zap.Error(err))
		}
		return nil
	case PromptAddFiles:
		return addFiles(sess, config, logger)
	case PromptRemoveFile:
		return removeFile(sess)
	case PromptClearFiles:
		sess.ClearStaged()
		return nil
	case PromptAddSkill:
		return addSkills(sess)
	case PromptRemoveSkill:
		return removeSkill(sess)
	case PromptMatchingOnly:
		sess.SetMatchingOnly(true)
		return nil
	case PromptShowAll:
		sess.SetMatchingOnly(false)
		return nil
	case PromptDetails:
		return toggleDetails(ctx, sess)
	case PromptWriteReport:
		return writeReportPrompt(sess, logger)
	case PromptResultsToFile:
		results := resume.Results{Items: sess.Results()}
		filename, err := results.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file",
			zap.String("filename", filename),
			zap.Int("resumes", results.Len()),
			zap.Strings("sources", results.Filenames()),
		)
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "requested from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func addFiles(sess *session.Session, config *Config, logger *zap.Logger) error {
	prompt := promptui.Prompt{Label: "File or directory path"}
	path, err := prompt.Run()
	if err != nil {
		return ignoreAbort(err)
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	list := collect([]string{path}, config, logger)
	if len(list) == 0 {
		fmt.Fprintln(stdout, "No files found.")
		return nil
	}
	sess.Stage(list...)
	return nil
}

func removeFile(sess *session.Session) error {
	lines := sess.Selection().Lines
	idx, choice, err := (&promptui.Select{
		Label: "Choose a file to remove",
		Items: append(lines, PromptBack),
	}).Run()
	if err != nil {
		return ignoreAbort(err)
	}
	if choice == PromptBack {
		return nil
	}

	sess.Unstage(idx)
	return nil
}

// addSkills commits one skill per Enter until an empty line is submitted.
func addSkills(sess *session.Session) error {
	for {
		prompt := promptui.Prompt{Label: "Required skill (empty line to finish)"}
		raw, err := prompt.Run()
		if err != nil {
			return ignoreAbort(err)
		}

		if strings.TrimSpace(raw) == "" {
			return nil
		}
		if !sess.AddSkill(raw) {
			fmt.Fprintf(stdout, "%q is already selected.\n", strings.TrimSpace(raw))
		}
	}
}

func removeSkill(sess *session.Session) error {
	_, choice, err := (&promptui.Select{
		Label: "Choose a skill to remove",
		Items: append(sess.Skills(), PromptBack),
	}).Run()
	if err != nil {
		return ignoreAbort(err)
	}
	if choice == PromptBack {
		return nil
	}

	sess.RemoveSkill(choice)
	return nil
}

func toggleDetails(ctx context.Context, sess *session.Session) error {
	view := sess.View()
	rows := render.Rows(view.Resumes, view.MatchingOnly)
	if len(rows) == 0 {
		fmt.Fprintln(stdout, "No résumés to show.")
		return nil
	}

	items := make([]string, 0, len(rows)+1)
	for i, r := range rows {
		marker := "[+]"
		if view.IsExpanded(r) {
			marker = "[-]"
		}
		items = append(items, fmt.Sprintf("%s %d. %s (%s)", marker, i+1, r.Name, r.Filename))
	}

	idx, choice, err := (&promptui.Select{
		Label: "Choose a résumé",
		Items: append(items, PromptBack),
	}).Run()
	if err != nil {
		return ignoreAbort(err)
	}
	if choice == PromptBack {
		return nil
	}

	if err := sess.ToggleDetails(ctx, idx); err != nil {
		return err
	}
	if r := sess.Expanded(); r != nil {
		fmt.Fprintf(stdout, "Showing details for %s (%s).\n", r.Name, r.Filename)
	} else {
		fmt.Fprintln(stdout, "Details hidden.")
	}
	return nil
}

func writeReportPrompt(sess *session.Session, logger *zap.Logger) error {
	prompt := promptui.Prompt{Label: "Report file", Default: defaultReportName, AllowEdit: true}
	path, err := prompt.Run()
	if err != nil {
		return ignoreAbort(err)
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	return writeReport(sess.View(), formatFor(path), path, logger)
}

// ignoreAbort turns a Ctrl-C inside a sub-prompt into a return to the main menu.
func ignoreAbort(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrEOF) {
		return nil
	}
	return err
}
