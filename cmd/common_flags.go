package cmd

import (
	"github.com/spf13/cobra"
)

var (
	User string
	Room string

	AssumeYes bool
)

// AddCommonFlagsToChatCmds lets a local command pretend to be someone
// speaking in a room, which matters for admin checks and PLUSPLUS_ROOMS.
func AddCommonFlagsToChatCmds(c *cobra.Command) {
	c.PersistentFlags().
		StringVarP(&User, "user", "u", "", "nickname to speak as. Defaults to $USER")
	c.PersistentFlags().
		StringVarP(&Room, "room", "r", "", "room the message is heard in")
}

func AddCommonFlagsToTransferCmds(c *cobra.Command) {
	c.PersistentFlags().
		BoolVarP(&AssumeYes, "yes", "y", false, "send without asking for confirmation")
}
