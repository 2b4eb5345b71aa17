package routes

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/abiiranathan/pdfterms/match"
	"github.com/abiiranathan/pdfterms/terms"
)

type questionResponse struct {
	Category string      `json:"category"`
	Question string      `json:"question"`
	Groups   match.Query `json:"groups"`
}

// ListCategories responds with the sorted category names.
func ListCategories(store *terms.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"categories": store.Categories(),
		})
	}
}

// ListQuestions responds with the sorted questions of {category}.
func ListQuestions(store *terms.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := r.PathValue("category")
		questions, err := store.Questions(category)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"category":  category,
			"questions": questions,
		})
	}
}

// GetQuestion responds with the term groups of {category}/{question}.
func GetQuestion(store *terms.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, question := r.PathValue("category"), r.PathValue("question")
		groups, err := store.Query(category, question)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, questionResponse{
			Category: category,
			Question: question,
			Groups:   groups,
		})
	}
}

// AddCategory creates {category}.
func AddCategory(store *terms.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := r.PathValue("category")
		if err := store.AddCategory(category); err != nil {
			writeError(w, r, err)
			return
		}
		if err := store.Save(); err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"category": category})
	}
}

// RemoveCategory deletes {category} and its questions.
func RemoveCategory(store *terms.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.RemoveCategory(r.PathValue("category")); err != nil {
			writeError(w, r, err)
			return
		}
		if err := store.Save(); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type putQuestionRequest struct {
	Groups match.Query `json:"groups"`
}

// PutQuestion creates {question} in {category} if needed and replaces its
// groups with the groups in the request body.
func PutQuestion(store *terms.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, question := r.PathValue("category"), r.PathValue("question")

		var body putQuestionRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}

		if err := store.AddQuestion(category, question); err != nil {
			writeError(w, r, err)
			return
		}
		if err := store.SetGroups(category, question, body.Groups); err != nil {
			writeError(w, r, err)
			return
		}
		if err := store.Save(); err != nil {
			writeError(w, r, err)
			return
		}

		groups, _ := store.Query(category, question)
		writeJSON(w, http.StatusOK, questionResponse{
			Category: category,
			Question: question,
			Groups:   groups,
		})
	}
}

// RemoveQuestion deletes {question} from {category}.
func RemoveQuestion(store *terms.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.RemoveQuestion(r.PathValue("category"), r.PathValue("question")); err != nil {
			writeError(w, r, err)
			return
		}
		if err := store.Save(); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
