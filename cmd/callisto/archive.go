package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"stellar-hq/callisto/pkg/cli"
	"stellar-hq/callisto/pkg/policy/archive"
	"stellar-hq/callisto/pkg/policy/manager"
)

var archiveFlags struct {
	dir string
	id  string
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage archived policy set snapshots",
}

var archiveSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Archive the current policy directory as a snapshot",
	RunE:  archiveSave,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived snapshots, newest first",
	RunE:  archiveList,
}

var archiveShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the policy set stored in a snapshot",
	RunE:  archiveShow,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveSaveCmd, archiveListCmd, archiveShowCmd)

	archiveSaveCmd.Flags().StringVarP(&archiveFlags.dir, "dir", "d", "", "override policy directory")
	archiveShowCmd.Flags().StringVar(&archiveFlags.id, "id", "", "snapshot id")
	archiveShowCmd.MarkFlagRequired("id")
}

func openArchive() (*archive.Archive, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	return archive.Open(cfg.Archive)
}

func archiveSave(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}
	dir := cfg.Policy.Dir
	if archiveFlags.dir != "" {
		dir = archiveFlags.dir
	}

	loader := manager.NewLoader(nil)
	set, err := loader.LoadDir(dir)
	if err != nil {
		return cli.NewCommandError("archive save", err)
	}

	arch, err := archive.Open(cfg.Archive)
	if err != nil {
		return cli.NewCommandError("archive save", err)
	}
	defer arch.Close()

	id, err := arch.Save(context.Background(), "", set)
	if err != nil {
		return cli.NewCommandError("archive save", err)
	}
	fmt.Printf("Saved snapshot %s\n", id)
	return nil
}

func archiveList(cmd *cobra.Command, args []string) error {
	arch, err := openArchive()
	if err != nil {
		return cli.NewCommandError("archive list", err)
	}
	defer arch.Close()

	snapshots, err := arch.List(context.Background())
	if err != nil {
		return cli.NewCommandError("archive list", err)
	}
	if len(snapshots) == 0 {
		fmt.Println("No snapshots archived.")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %-36s  %9s  %5s\n", "ID", "CREATED", "GENERATION", "TEMPLATES", "LINKS")
	for _, s := range snapshots {
		gen := s.Generation
		if gen == "" {
			gen = "-"
		}
		fmt.Printf("%-36s  %-20s  %-36s  %9d  %5d\n",
			s.ID, s.CreatedAt.Format("2006-01-02 15:04:05"), gen, s.Templates, s.Links)
	}
	return nil
}

func archiveShow(cmd *cobra.Command, args []string) error {
	arch, err := openArchive()
	if err != nil {
		return cli.NewCommandError("archive show", err)
	}
	defer arch.Close()

	set, err := arch.Load(context.Background(), archiveFlags.id)
	if err != nil {
		return cli.NewCommandError("archive show", err)
	}
	fmt.Println(set)
	return nil
}
