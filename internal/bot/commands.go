package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"magnet-bot/internal/chat"
	"magnet-bot/internal/domain"
	"magnet-bot/internal/downloader"
	"magnet-bot/internal/metrics"
)

// Command is an inbound chat command.
type Command int

const (
	CommandMagnet Command = iota + 1
	CommandTorrent
	CommandDownloading
	CommandResumed
	CommandCompleted
	CommandStart
	CommandHelp
)

var Commands = []Command{
	CommandMagnet,
	CommandTorrent,
	CommandDownloading,
	CommandResumed,
	CommandCompleted,
	CommandStart,
	CommandHelp,
}

func (c Command) String() string {
	switch c {
	case CommandMagnet:
		return "magnet"
	case CommandTorrent:
		return "torrent"
	case CommandDownloading:
		return "downloading"
	case CommandResumed:
		return "resumed"
	case CommandCompleted:
		return "completed"
	case CommandStart:
		return "start"
	case CommandHelp:
		return "help"
	}
	return fmt.Sprintf("command(%d)", int(c))
}

func (c Command) Description() string {
	switch c {
	case CommandMagnet:
		return "Add a torrent by magnet link or .torrent URL"
	case CommandTorrent:
		return "Upload a .torrent file to add it"
	case CommandDownloading:
		return "Show downloading torrents"
	case CommandResumed:
		return "Show active torrents"
	case CommandCompleted:
		return "Show completed torrents"
	case CommandStart, CommandHelp:
		return "Show available commands"
	}
	return ""
}

func ParseCommand(name string) (Command, error) {
	name = strings.ToLower(name)
	for _, c := range Commands {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", name)
}

// CommandMenu lists the slash commands advertised to chat clients.
func CommandMenu() []chat.CommandInfo {
	menu := []chat.CommandInfo{}
	for _, c := range Commands {
		if c == CommandTorrent || c == CommandStart {
			continue
		}
		menu = append(menu, chat.CommandInfo{Name: c.String(), Description: c.Description()})
	}
	return menu
}

func helpText() string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, c := range CommandMenu() {
		fmt.Fprintf(&b, "/%s - %s\n", c.Name, c.Description)
	}
	b.WriteString("Send a .torrent file to add it.")
	return b.String()
}

func (b *Bot) HandleCommand(ctx context.Context, r chat.Replier, name string, args []string) {
	logger := b.requestLogger().WithField("command", name)

	cmd, err := ParseCommand(name)
	if err != nil {
		logger.Info("unknown command")
		metrics.IncFailure("unknown_command")
		b.reply(ctx, logger, r, msgUnknownCommand)
		return
	}
	metrics.IncCommand(cmd.String())

	switch cmd {
	case CommandMagnet:
		b.addByLink(ctx, logger, r, args)
	case CommandTorrent:
		b.reply(ctx, logger, r, msgSendFile)
	case CommandDownloading:
		b.sendReport(ctx, logger, r, domain.ReportDownloading)
	case CommandResumed:
		b.sendReport(ctx, logger, r, domain.ReportResumed)
	case CommandCompleted:
		b.sendReport(ctx, logger, r, domain.ReportCompleted)
	case CommandStart, CommandHelp:
		b.reply(ctx, logger, r, helpText())
	}
}

func (b *Bot) addByLink(ctx context.Context, logger *logrus.Entry, r chat.Replier, args []string) {
	if len(args) == 0 {
		metrics.IncFailure("missing_link")
		b.reply(ctx, logger, r, msgProvideLink)
		return
	}

	link := args[0]
	info, err := downloader.InspectLink(link)
	if err != nil {
		logger.WithError(err).Info("rejected link")
		metrics.IncFailure("invalid_link")
		b.reply(ctx, logger, r, msgInvalidLink)
		return
	}

	if err := b.torrents.AddByLink(ctx, link); err != nil {
		logger.WithError(err).Error("add link")
		metrics.IncFailure("add_link")
		b.reply(ctx, logger, r, msgAddLinkFailed)
		return
	}

	logger.WithField("torrent", info.Label()).Info("torrent added from link")
	b.reply(ctx, logger, r, fmt.Sprintf("Added %s.", info.Label()))
}

func (b *Bot) HandleDocument(ctx context.Context, r chat.Replier, doc chat.Document) {
	logger := b.requestLogger().WithFields(logrus.Fields{
		"command": CommandTorrent.String(),
		"file":    doc.FileName,
	})
	metrics.IncCommand(CommandTorrent.String())

	info, err := b.addByFile(ctx, doc)
	if err != nil {
		logger.WithError(err).Error("add torrent file")
		metrics.IncFailure("add_file")
		b.reply(ctx, logger, r, msgAddFileFailed)
		return
	}

	logger.WithField("torrent", info.InfoHash).Info("torrent added from file")
	b.reply(ctx, logger, r, fmt.Sprintf("Added %s.", info.Name))
}

// addByFile stores the upload in the temp dir for as long as the client needs it.
func (b *Bot) addByFile(ctx context.Context, doc chat.Document) (downloader.FileInfo, error) {
	name := filepath.Base(doc.FileName)
	if name == "." || name == ".." || name == string(filepath.Separator) || doc.Save == nil {
		return downloader.FileInfo{}, fmt.Errorf("invalid document %q", doc.FileName)
	}

	path := filepath.Join(b.tempDir, name)
	if err := doc.Save(ctx, path); err != nil {
		return downloader.FileInfo{}, fmt.Errorf("save document: %w", err)
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			b.logger.WithError(err).Warn("remove uploaded file")
		}
	}()

	info, err := downloader.InspectFile(path)
	if err != nil {
		return downloader.FileInfo{}, err
	}
	if err := b.torrents.AddByFile(ctx, path); err != nil {
		return downloader.FileInfo{}, err
	}
	return info, nil
}
