package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/deskgrid/pkg/errors"
	"github.com/matzehuels/deskgrid/pkg/layout"
)

func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func intParam(r *http.Request, name string) (int, error) {
	v := chi.URLParam(r, name)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer, got %q", name, v)
	}
	return n, nil
}

// =============================================================================
// Layout
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stale := s.engine.Stale()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "stale": stale})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	v := NewLayoutView(s.engine.Snapshot(), s.engine.CurrentPage(), s.engine.Stale())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, v)
}

// =============================================================================
// Items
// =============================================================================

// handlePlace places an item. With ?page=N the item goes near page N the
// way a user drop would; without it the first free cell anywhere is used.
func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req PlaceRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	it, err := req.Item()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	mode := layout.Bulk
	if p := r.URL.Query().Get("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "page must be an integer, got %q", p))
			return
		}
		mode = layout.Interactive(page)
	}

	s.mu.Lock()
	placed, err := s.engine.PlaceItem(it, mode)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, NewItemView(placed, nil))
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "key")
	s.mu.Lock()
	dropped, err := s.engine.RemoveItems(key)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if dropped == nil {
		dropped = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": key, "dropped_pages": dropped})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	moved, err := s.engine.MoveItem(pathParam(r, "key"), req.Page, req.Row, req.Column)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewItemView(moved, nil))
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req gridRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.ChangeGridDimensions(req.Rows, req.Columns); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewLayoutView(s.engine.Snapshot(), s.engine.CurrentPage(), s.engine.Stale()))
}

func (s *Server) handleUninstall(w http.ResponseWriter, r *http.Request) {
	bundle := pathParam(r, "bundle")
	if err := errors.ValidateBundleName(bundle); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	removed := s.engine.UninstallBundle(bundle)
	s.mu.Unlock()
	views := make([]ItemView, 0, len(removed))
	for _, it := range removed {
		views = append(views, NewItemView(it, nil))
	}
	writeJSON(w, http.StatusOK, map[string]any{"bundle": bundle, "removed": views})
}

// =============================================================================
// Pages
// =============================================================================

func (s *Server) handleAddPage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	page := s.engine.AddBlankPage()
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, pageRequest{Page: page})
}

func (s *Server) handleSetCurrentPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	err := s.engine.SetCurrentPage(req.Page)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	err = s.engine.DeleteBlankPage(page)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Folders
// =============================================================================

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.engine.CreateFolder(req.Name, req.Keys...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	members, _ := s.engine.Folder(f.Key())
	writeJSON(w, http.StatusCreated, NewItemView(f, members))
}

func (s *Server) handleFolder(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.engine.Item(id)
	members, isFolder := s.engine.Folder(id)
	if !ok || !isFolder {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "folder %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, NewItemView(f, members))
}

func (s *Server) handleRenameFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := pathParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.RenameFolder(id, req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, _ := s.engine.Item(id)
	members, _ := s.engine.Folder(id)
	writeJSON(w, http.StatusOK, NewItemView(f, members))
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	policy, err := layout.ParseFolderPolicy(r.URL.Query().Get("mode"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	members, err := s.engine.DeleteFolder(pathParam(r, "id"), policy)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]ItemView, 0, len(members))
	for _, m := range members {
		views = append(views, NewItemView(m, nil))
	}
	writeJSON(w, http.StatusOK, map[string]any{"mode": policy.String(), "members": views})
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := pathParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.AddToFolder(id, req.Key); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, _ := s.engine.Item(id)
	members, _ := s.engine.Folder(id)
	writeJSON(w, http.StatusOK, NewItemView(f, members))
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "key")
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.RemoveFromFolder(pathParam(r, "id"), key); err != nil {
		s.writeError(w, r, err)
		return
	}
	it, _ := s.engine.Item(key)
	writeJSON(w, http.StatusOK, NewItemView(it, nil))
}

// =============================================================================
// Badges and labels
// =============================================================================

func (s *Server) handleBadge(w http.ResponseWriter, r *http.Request) {
	var req badgeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	bundle := pathParam(r, "bundle")
	s.mu.Lock()
	n := s.engine.UpdateBadge(bundle, req.Count)
	s.mu.Unlock()
	if n == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no app of bundle %q in the layout", bundle))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bundle": bundle, "count": max(req.Count, 0), "updated": n})
}

// handleGetLabel returns the cached display label, or the key itself on a
// miss.
func (s *Server) handleGetLabel(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "key")
	data, ok, err := s.labels.Get(r.Context(), s.keyer.LabelKey(key))
	if err != nil {
		s.logger.Warn("label lookup failed", "key", key, "err", err)
	}
	if !ok || err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"key": key, "label": key, "cached": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "label": string(data), "cached": true})
}

func (s *Server) handleSetLabel(w http.ResponseWriter, r *http.Request) {
	var req labelBody
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	key := pathParam(r, "key")
	if err := errors.ValidateKey(key); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.labels.Set(r.Context(), s.keyer.LabelKey(key), []byte(req.Label), s.labelTTL); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "store label"))
		return
	}
	writeJSON(w, http.StatusOK, labelBody{Key: key, Label: req.Label})
}
