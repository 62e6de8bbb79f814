package addrbook

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/analysis/token/lowercase"
	"github.com/blevesearch/bleve/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/mapping"
	"github.com/blevesearch/bleve/search/query"

	"github.com/tranvictor/kredits/common"
)

const (
	maxFindResults = 10
	wholeLowerName = "whole_lower"
)

type entryDoc struct {
	Nickname string `json:"nickname"`
	Address  string `json:"address"`
}

// nicknames and addresses are matched as whole lowercased tokens, the
// standard analyzer would split "bumi-dev" in two
func buildIndexMapping() (mapping.IndexMapping, error) {
	indexMapping := bleve.NewIndexMapping()
	err := indexMapping.AddCustomAnalyzer(wholeLowerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, err
	}

	fieldMapping := bleve.NewTextFieldMapping()
	fieldMapping.Analyzer = wholeLowerName

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("nickname", fieldMapping)
	docMapping.AddFieldMappingsAt("address", fieldMapping)

	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = wholeLowerName
	return indexMapping, nil
}

func findQuery(input string) query.Query {
	q := strings.ToLower(input)

	nickContains := bleve.NewWildcardQuery("*" + q + "*")
	nickContains.SetField("nickname")
	nickContains.SetBoost(2)

	nickTypo := bleve.NewFuzzyQuery(q)
	nickTypo.SetField("nickname")
	nickTypo.SetFuzziness(1)

	addrPrefix := bleve.NewPrefixQuery(q)
	addrPrefix.SetField("address")

	return bleve.NewDisjunctionQuery(nickContains, nickTypo, addrPrefix)
}

// Find searches nicknames (substring or one typo away) and address
// prefixes, returning at most ten entries by relevance. The index lives in
// memory for the duration of the call.
func (b *Book) Find(ctx context.Context, input string) ([]common.AddressBookEntry, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, common.NewValidationError("What should I look for? Try \"%s address find [name]\".", b.keyword)
	}
	content, err := b.content(ctx)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, nil
	}

	indexMapping, err := buildIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("building address index mapping: %w", err)
	}
	index, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("creating address index: %w", err)
	}
	defer index.Close()

	batch := index.NewBatch()
	for nick, addr := range content {
		if err := batch.Index(nick, entryDoc{Nickname: nick, Address: addr}); err != nil {
			return nil, fmt.Errorf("indexing %s: %w", nick, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("indexing address book: %w", err)
	}

	req := bleve.NewSearchRequestOptions(findQuery(input), maxFindResults, 0, false)
	res, err := index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching address book: %w", err)
	}

	result := make([]common.AddressBookEntry, 0, len(res.Hits))
	for _, hit := range res.Hits {
		result = append(result, common.AddressBookEntry{Nickname: hit.ID, Address: content[hit.ID]})
	}
	return result, nil
}
