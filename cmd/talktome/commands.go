package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbruckner/talktome/internal/config"
	"github.com/jbruckner/talktome/internal/jobs"
)

// --- job ---

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage job application entries",
}

var jobAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Create or update a job entry from a JSON file",
	Long: `Create or update a job entry from a JSON file.

Examples:
  talktome job add acme --file ./acme.json
  talktome job add acme --company "ACME GmbH" --position "Backend Engineer" --language german`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		file, _ := cmd.Flags().GetString("file")
		company, _ := cmd.Flags().GetString("company")
		position, _ := cmd.Flags().GetString("position")
		description, _ := cmd.Flags().GetString("description")
		language, _ := cmd.Flags().GetString("language")

		var job map[string]any
		if file != "" {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}
			if err := json.Unmarshal(data, &job); err != nil {
				return fmt.Errorf("invalid job JSON: %w", err)
			}
		} else {
			if company == "" || position == "" {
				return fmt.Errorf("either --file or both --company and --position are required")
			}
			job = map[string]any{
				"company":     company,
				"position":    position,
				"description": description,
				"language":    language,
				"enabled":     true,
			}
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), "/jobs/"+id, job)
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Saved job %s", result["id"])
		return nil
	},
}

var jobListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all job entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/jobs")
		if err != nil {
			return err
		}

		var list []jobs.Job
		if err := decodeJSON(resp, &list); err != nil {
			return err
		}

		if len(list) == 0 {
			fmt.Println("No jobs found.")
			return nil
		}

		for _, j := range list {
			state := "disabled"
			if j.Enabled {
				state = "enabled"
			}
			fmt.Printf("%s  %s at %s  [%s, %s]\n",
				colorize(colorCyan, j.ID),
				j.Position,
				j.Company,
				j.Language,
				state,
			)
		}
		return nil
	},
}

var jobShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a job entry as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/jobs/"+args[0])
		if err != nil {
			return err
		}

		var job any
		if err := decodeJSON(resp, &job); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(job)
	},
}

func setJobEnabled(cmd *cobra.Command, id string, enabled bool) error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}

	action := "disable"
	if enabled {
		action = "enable"
	}
	resp, err := client.post(cmd.Context(), "/jobs/"+id+"/"+action, nil)
	if err != nil {
		return err
	}

	var result map[string]string
	if err := decodeJSON(resp, &result); err != nil {
		return err
	}

	printSuccess("Job %s %s", id, result["status"])
	return nil
}

var jobEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Make a job's pages publicly reachable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setJobEnabled(cmd, args[0], true)
	},
}

var jobDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Take a job's pages offline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setJobEnabled(cmd, args[0], false)
	},
}

var jobRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a job entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/jobs/"+args[0])
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Removed job %s", args[0])
		return nil
	},
}

func init() {
	jobAddCmd.Flags().String("file", "", "path to a job JSON file")
	jobAddCmd.Flags().String("company", "", "company name")
	jobAddCmd.Flags().String("position", "", "position title")
	jobAddCmd.Flags().String("description", "", "job description (markdown)")
	jobAddCmd.Flags().String("language", "german", "page and persona language (german or english)")

	jobCmd.AddCommand(jobAddCmd)
	jobCmd.AddCommand(jobListCmd)
	jobCmd.AddCommand(jobShowCmd)
	jobCmd.AddCommand(jobEnableCmd)
	jobCmd.AddCommand(jobDisableCmd)
	jobCmd.AddCommand(jobRemoveCmd)
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the candidate profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/profile")
		if err != nil {
			return err
		}

		var profile any
		if err := decodeJSON(resp, &profile); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a profile field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.patch(cmd.Context(), "/profile", map[string]any{key: value})
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var profileImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the profile from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			return fmt.Errorf("--file is required")
		}

		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		var profile map[string]any
		if err := json.Unmarshal(data, &profile); err != nil {
			return fmt.Errorf("invalid profile JSON: %w", err)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), "/profile", profile)
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Profile imported from %s", file)
		return nil
	},
}

var profileImportCVCmd = &cobra.Command{
	Use:   "import-cv",
	Short: "Extract candidate facts from a CV PDF",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			return fmt.Errorf("--file is required")
		}

		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		body := map[string]string{"content": base64.StdEncoding.EncodeToString(data)}
		resp, err := client.post(cmd.Context(), "/profile/import-cv", body)
		if err != nil {
			return err
		}

		var result struct {
			Status string `json:"status"`
			Chars  int    `json:"chars"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Imported %d characters from %s", result.Chars, file)
		return nil
	},
}

var profileImportURLCmd = &cobra.Command{
	Use:   "import-url <url>",
	Short: "Extract candidate facts from a portfolio page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/profile/import-url", map[string]string{"url": args[0]})
		if err != nil {
			return err
		}

		var result struct {
			Status string `json:"status"`
			Chars  int    `json:"chars"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Imported %d characters from %s", result.Chars, args[0])
		return nil
	},
}

func init() {
	profileImportCmd.Flags().String("file", "", "path to a profile JSON file")
	profileImportCVCmd.Flags().String("file", "", "path to a CV PDF file")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileImportCmd)
	profileCmd.AddCommand(profileImportCVCmd)
	profileCmd.AddCommand(profileImportURLCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			if strings.Contains(err.Error(), "unknown config key") {
				return fmt.Errorf("%w (valid keys: %s)", err, strings.Join(config.ValidKeys(), ", "))
			}
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
