package bot

const (
	msgProvideLink    = "Provide magnet link."
	msgInvalidLink    = "Invalid magnet link."
	msgAddLinkFailed  = "Add magnet link failed."
	msgAddFileFailed  = "Add torrent file failed."
	msgSendFile       = "Send a .torrent file to add it."
	msgReportFailed   = "Failed to build report."
	msgListFailed     = "Failed to list torrents."
	msgUnknownCommand = "Unknown command. Send /help for the list of commands."
	msgUnknownAction  = "Unknown action."
	msgNotFound       = "Torrent not found. It may have been removed."
)
