package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"doctor-booking-api/internal/config"
	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/store"
)

type seedDoctor struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Image          string `json:"image"`
	Availability   *bool  `json:"availability"`
	About          string `json:"about"`
}

// parseDoctors reads a JSON array of doctor profiles. Missing ids get a
// fresh uuid and availability defaults to true.
func parseDoctors(r io.Reader) ([]model.Doctor, error) {
	var in []seedDoctor
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("decode doctors: %w", err)
	}
	out := make([]model.Doctor, 0, len(in))
	for i, s := range in {
		d := model.Doctor{
			ID:             s.ID,
			Name:           s.Name,
			Specialization: s.Specialization,
			Image:          s.Image,
			Available:      s.Availability == nil || *s.Availability,
			About:          s.About,
		}
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		if err := store.ValidateDoctor(&d); err != nil {
			return nil, fmt.Errorf("doctor %d (%s): %w", i, s.Name, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load doctor profiles from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			doctors, err := parseDoctors(f)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := context.Background()
			st, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			for i := range doctors {
				if err := st.UpsertDoctor(ctx, &doctors[i]); err != nil {
					return fmt.Errorf("upsert %s: %w", doctors[i].ID, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d doctor(s).\n", len(doctors))
			return nil
		},
	}
	cmd.Flags().String("file", "data/doctors.json", "Path to the doctors JSON file")
	return cmd
}
