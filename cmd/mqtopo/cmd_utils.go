// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/mqtopo/cmd/mqtopo/gcs"
	"github.com/AleutianAI/mqtopo/pkg/ux"
	"github.com/AleutianAI/mqtopo/pkg/validation"
)

// runValidate checks each argument against MQ queue manager naming
// rules and exits 1 if any name is invalid.
func runValidate(cmd *cobra.Command, args []string) {
	failed := false
	for _, name := range args {
		if err := validation.ValidateManagerName(name); err != nil {
			fmt.Printf("INVALID  %s: %v\n", name, err)
			failed = true
			continue
		}
		fmt.Printf("OK       %s\n", name)
	}
	if failed {
		closeLogger()
		os.Exit(1)
	}
}

// runUpload pushes the output directory to the configured GCS bucket.
func runUpload(cmd *cobra.Command, args []string) {
	if !cfg.UploadEnabled() {
		fmt.Println("Upload is disabled. Set upload.bucket in mqtopo.yaml to enable it.")
		return
	}

	ctx := context.Background()
	client, err := gcs.NewClient(ctx, cfg.Upload.Project, cfg.Upload.Bucket, cfg.Upload.CredentialsFile)
	if err != nil {
		slog.Error("connecting to GCS", "error", err)
		closeLogger()
		os.Exit(1)
	}
	defer client.Close()

	dest := fmt.Sprintf("gs://%s/%s", cfg.Upload.Bucket, cfg.Upload.Prefix)
	err = ux.WithSpinner(fmt.Sprintf("Uploading %s to %s", cfg.Output.Dir, dest), func() error {
		return client.UploadDir(ctx, cfg.Output.Dir, cfg.Upload.Prefix)
	})
	if err != nil {
		slog.Error("uploading artifacts", "error", err)
		closeLogger()
		os.Exit(1)
	}
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("mqtopo %s\n", Version)
}
