/*
Package cli provides helpers shared by the relay's commands.

Output formatting for --output flags:

	format, err := cli.ParseOutputFormat(flagValue)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, result); err != nil {
		return err
	}

Typed errors let main choose an exit status:

	os.Exit(cli.ExitCode(err))
*/
package cli
