package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigHandler serves /api/config. GET returns the runtime part of the
// file at cfile as JSON, POST merges a JSON RuntimeConfig into the file.
// Writing the file triggers the reload through the watcher.
func ConfigHandler(cfile string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			getConfigHandler(w, cfile)
		case http.MethodPost:
			setConfigHandler(w, r, cfile)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func getConfigHandler(w http.ResponseWriter, cfile string) {
	slog.Debug("Handling GET /api/config request")
	// read on every request, the file may have been edited by hand
	conf, err := ReadConfig(cfile)
	if err != nil {
		slog.Error("Failed to read config file for API", "error", err)
		http.Error(w, "Failed to read configuration", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(conf.Runtime()); err != nil {
		slog.Error("Failed to encode runtime config to JSON", "error", err)
	}
}

func setConfigHandler(w http.ResponseWriter, r *http.Request, cfile string) {
	slog.Info("Handling POST /api/config request")
	defer r.Body.Close()

	var rc RuntimeConfig
	if err := json.NewDecoder(r.Body).Decode(&rc); err != nil {
		slog.Warn("Failed to decode incoming JSON", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conf, err := ReadConfig(cfile)
	if err != nil {
		slog.Error("Failed to read existing config for update", "error", err)
		http.Error(w, "Failed to read configuration", http.StatusInternalServerError)
		return
	}

	conf.ApplyRuntime(rc)
	if err := conf.Validate(); err != nil {
		slog.Warn("Validation failed for new config", "error", err)
		http.Error(w, fmt.Sprintf("Invalid configuration: %v", err), http.StatusBadRequest)
		return
	}

	data, err := yaml.Marshal(&conf)
	if err != nil {
		slog.Error("Failed to marshal merged config to YAML", "error", err)
		http.Error(w, "Failed to prepare configuration for saving", http.StatusInternalServerError)
		return
	}

	if err := os.WriteFile(cfile, data, 0o644); err != nil {
		slog.Error("Failed to write updated config file", "error", err)
		http.Error(w, "Failed to save configuration", http.StatusInternalServerError)
		return
	}

	slog.Info("Updated config file, animation will reload")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "Configuration updated successfully.")
}
