// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/foliolab/folio/internal/model"
	"github.com/foliolab/folio/internal/store"
)

// Usage identifies an entry that references a media id.
type Usage struct {
	Collection string `json:"collection"`
	Slug       string `json:"slug"`
	Title      string `json:"title"`
}

// OrphanReport is the result of scanning entries for dangling media
// references.
type OrphanReport struct {
	Referenced []string `json:"referenced"` // every media id found in entry data
	Existing   []string `json:"existing"`   // referenced ids with a media record
	Missing    []string `json:"missing"`    // referenced ids with no record
	Entries    []Usage  `json:"entries"`    // entries holding missing references
}

// FixedOrphan records one orphaned id that was matched to a stored file.
type FixedOrphan struct {
	ID     string `json:"id"`
	File   string `json:"file,omitempty"`
	Method string `json:"method"` // "filename" or "url"
}

// FixResult is the outcome of a best-effort orphan repair run.
type FixResult struct {
	Fixed     []FixedOrphan `json:"fixed"`
	Unmatched []string      `json:"unmatched"`
}

// RepairService provides full-scan media reference tooling: replacement,
// usage lookup and orphan diagnostics. These operations walk every entry;
// they trade efficiency for correctness and are meant for admin use.
type RepairService struct {
	store     *store.Store
	uploadDir string
	baseURL   string
	log       *slog.Logger
}

// NewRepairService creates a repair service reading files under uploadDir.
func NewRepairService(s *store.Store, uploadDir, baseURL string, log *slog.Logger) *RepairService {
	return &RepairService{store: s, uploadDir: uploadDir, baseURL: baseURL, log: log}
}

// ReplaceReferences rewrites every occurrence of oldID in entry data to
// newID and returns the number of entries modified. Running it again with
// the same arguments reports zero once the old id no longer appears.
func (svc *RepairService) ReplaceReferences(ctx context.Context, oldID, newID string) (int, error) {
	entries, err := svc.store.AllEntries(ctx)
	if err != nil {
		return 0, fmt.Errorf("scanning entries: %w", err)
	}

	modified := 0
	for _, entry := range entries {
		if !replaceMediaRefs(entry.Data, oldID, newID) {
			continue
		}
		if err := svc.store.UpdateEntryData(ctx, entry.ID, entry.Data); err != nil {
			return modified, fmt.Errorf("updating entry %s/%s: %w", entry.Collection, entry.Slug, err)
		}
		modified++
	}

	if modified > 0 {
		svc.log.Info("media references replaced", "old_id", oldID, "new_id", newID, "entries", modified)
	}
	return modified, nil
}

// FindUsages reports every entry referencing the given media id.
func (svc *RepairService) FindUsages(ctx context.Context, mediaID string) ([]Usage, error) {
	entries, err := svc.store.AllEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning entries: %w", err)
	}

	usages := []Usage{}
	for _, entry := range entries {
		refs := map[string]bool{}
		collectMediaRefs(entry.Data, refs)
		if refs[mediaID] {
			usages = append(usages, svc.usage(entry))
		}
	}
	return usages, nil
}

// UsedMediaIDs returns every media id referenced by at least one entry.
func (svc *RepairService) UsedMediaIDs(ctx context.Context) ([]string, error) {
	entries, err := svc.store.AllEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning entries: %w", err)
	}

	refs := map[string]bool{}
	for _, entry := range entries {
		collectMediaRefs(entry.Data, refs)
	}

	ids := make([]string, 0, len(refs))
	for id := range refs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// DiagnoseOrphans compares media ids referenced by entries against stored
// media records and reports dangling references. Read-only.
func (svc *RepairService) DiagnoseOrphans(ctx context.Context) (*OrphanReport, error) {
	entries, err := svc.store.AllEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning entries: %w", err)
	}
	known, err := svc.store.AllMediaIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing media ids: %w", err)
	}

	refs := map[string]bool{}
	report := &OrphanReport{Referenced: []string{}, Existing: []string{}, Missing: []string{}, Entries: []Usage{}}

	for _, entry := range entries {
		entryRefs := map[string]bool{}
		collectMediaRefs(entry.Data, entryRefs)

		broken := false
		for id := range entryRefs {
			refs[id] = true
			if !known[id] {
				broken = true
			}
		}
		if broken {
			report.Entries = append(report.Entries, svc.usage(entry))
		}
	}

	for id := range refs {
		report.Referenced = append(report.Referenced, id)
		if known[id] {
			report.Existing = append(report.Existing, id)
		} else {
			report.Missing = append(report.Missing, id)
		}
	}
	sort.Strings(report.Referenced)
	sort.Strings(report.Existing)
	sort.Strings(report.Missing)
	return report, nil
}

// shortHashSuffix matches a trailing hash-like token appended by upload
// tooling, e.g. "sunset-a1b2c3d4" -> "sunset".
var shortHashSuffix = regexp.MustCompile(`[-_][0-9a-fA-F]{6,12}$`)

// FixOrphans attempts to reattach orphaned references to files present in
// the uploads directory. Matching is heuristic and first-match-wins: a
// substring match between the id and a file's stripped base name, then
// treating the id itself as a URL, otherwise the id stays unmatched. Each
// match synthesizes a minimal media record for human review afterwards.
func (svc *RepairService) FixOrphans(ctx context.Context) (*FixResult, error) {
	report, err := svc.DiagnoseOrphans(ctx)
	if err != nil {
		return nil, err
	}

	files, err := svc.listStoredFiles()
	if err != nil {
		return nil, fmt.Errorf("listing stored files: %w", err)
	}

	result := &FixResult{Fixed: []FixedOrphan{}, Unmatched: []string{}}
	for _, id := range report.Missing {
		if file, ok := matchOrphanFile(id, files); ok {
			if err := svc.adoptFile(ctx, id, file); err != nil {
				return result, err
			}
			result.Fixed = append(result.Fixed, FixedOrphan{ID: id, File: file, Method: "filename"})
			continue
		}
		if strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://") {
			if err := svc.adoptURL(ctx, id); err != nil {
				return result, err
			}
			result.Fixed = append(result.Fixed, FixedOrphan{ID: id, Method: "url"})
			continue
		}
		result.Unmatched = append(result.Unmatched, id)
	}

	svc.log.Info("orphan repair completed",
		"fixed", len(result.Fixed), "unmatched", len(result.Unmatched))
	return result, nil
}

// listStoredFiles walks the originals directory and returns file paths
// relative to the uploads root.
func (svc *RepairService) listStoredFiles() ([]string, error) {
	root := filepath.Join(svc.uploadDir, "originals")
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(svc.uploadDir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		// A missing uploads directory just means nothing to match against;
		// anything else (permissions, I/O) must surface.
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("walking uploads: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// matchOrphanFile returns the first stored file whose stripped base name
// and the orphaned id contain each other as substrings.
func matchOrphanFile(id string, files []string) (string, bool) {
	idLower := strings.ToLower(id)
	for _, file := range files {
		base := strippedBaseName(file)
		if base == "" {
			continue
		}
		if strings.Contains(idLower, base) || strings.Contains(base, idLower) {
			return file, true
		}
	}
	return "", false
}

// strippedBaseName lowercases a file's base name with the extension and
// any trailing short-hash suffix removed.
func strippedBaseName(file string) string {
	base := filepath.Base(file)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = shortHashSuffix.ReplaceAllString(base, "")
	return strings.ToLower(base)
}

// adoptFile synthesizes a media record for an orphaned id matched to a
// stored file. The title is guessed from the filename and the MIME type
// from the extension.
func (svc *RepairService) adoptFile(ctx context.Context, id, file string) error {
	name := filepath.Base(file)
	ext := strings.ToLower(filepath.Ext(name))

	item := model.Media{
		ID:            id,
		Filename:      name,
		OriginalName:  name,
		Slug:          strippedBaseName(file),
		Path:          file,
		URL:           svc.baseURL + "/uploads/" + filepath.ToSlash(file),
		Mime:          model.MimeByExtension[ext],
		Title:         titleFromFilename(name),
		ActiveVariant: model.VariantOriginal,
		Variants:      map[string]string{},
	}
	item.Variants[model.VariantOriginal] = item.URL

	if _, err := svc.store.CreateMedia(ctx, item); err != nil {
		return fmt.Errorf("adopting file %s for orphan %s: %w", file, id, err)
	}
	return nil
}

// adoptURL synthesizes a media record for an orphaned id that is itself a
// URL pointing at an external asset.
func (svc *RepairService) adoptURL(ctx context.Context, id string) error {
	name := filepath.Base(id)
	ext := strings.ToLower(filepath.Ext(name))

	item := model.Media{
		ID:            id,
		Filename:      name,
		OriginalName:  name,
		Slug:          strippedBaseName(name),
		URL:           id,
		Mime:          model.MimeByExtension[ext],
		Title:         titleFromFilename(name),
		ActiveVariant: model.VariantOriginal,
		Variants:      map[string]string{model.VariantOriginal: id},
	}

	if _, err := svc.store.CreateMedia(ctx, item); err != nil {
		return fmt.Errorf("adopting url orphan %s: %w", id, err)
	}
	return nil
}

// titleFromFilename turns "winter-morning-a1b2c3d4.jpg" into
// "winter morning", dropping the extension and any hash suffix.
func titleFromFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = shortHashSuffix.ReplaceAllString(base, "")
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}

func (svc *RepairService) usage(entry model.Entry) Usage {
	title := ""
	if c, ok := svc.store.Registry().Lookup(entry.Collection); ok {
		title = entry.Title(c.TitleField)
	}
	return Usage{Collection: entry.Collection, Slug: entry.Slug, Title: title}
}

// collectMediaRefs gathers every media id held by the known field shapes:
// featuredImage, the media list, block mediaId/mediaIds and seo.ogImage.
func collectMediaRefs(data map[string]any, out map[string]bool) {
	if id, ok := data["featuredImage"].(string); ok && id != "" {
		out[id] = true
	}
	if list, ok := data["media"].([]any); ok {
		for _, v := range list {
			if id, ok := v.(string); ok && id != "" {
				out[id] = true
			}
		}
	}
	if blocks, ok := data["blocks"].([]any); ok {
		for _, b := range blocks {
			block, ok := b.(map[string]any)
			if !ok {
				continue
			}
			if id, ok := block["mediaId"].(string); ok && id != "" {
				out[id] = true
			}
			if ids, ok := block["mediaIds"].([]any); ok {
				for _, v := range ids {
					if id, ok := v.(string); ok && id != "" {
						out[id] = true
					}
				}
			}
		}
	}
	if seo, ok := data["seo"].(map[string]any); ok {
		if id, ok := seo["ogImage"].(string); ok && id != "" {
			out[id] = true
		}
	}
}

// replaceMediaRefs rewrites oldID to newID across the same field shapes
// collectMediaRefs reads. Mutates data in place and reports whether
// anything changed.
func replaceMediaRefs(data map[string]any, oldID, newID string) bool {
	changed := false

	if id, ok := data["featuredImage"].(string); ok && id == oldID {
		data["featuredImage"] = newID
		changed = true
	}
	if list, ok := data["media"].([]any); ok {
		for i, v := range list {
			if id, ok := v.(string); ok && id == oldID {
				list[i] = newID
				changed = true
			}
		}
	}
	if blocks, ok := data["blocks"].([]any); ok {
		for _, b := range blocks {
			block, ok := b.(map[string]any)
			if !ok {
				continue
			}
			if id, ok := block["mediaId"].(string); ok && id == oldID {
				block["mediaId"] = newID
				changed = true
			}
			if ids, ok := block["mediaIds"].([]any); ok {
				for i, v := range ids {
					if id, ok := v.(string); ok && id == oldID {
						ids[i] = newID
						changed = true
					}
				}
			}
		}
	}
	if seo, ok := data["seo"].(map[string]any); ok {
		if id, ok := seo["ogImage"].(string); ok && id == oldID {
			seo["ogImage"] = newID
			changed = true
		}
	}
	return changed
}
