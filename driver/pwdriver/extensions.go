package pwdriver

import (
	"context"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
	"github.com/samber/lo"

	"github.com/networkteam/keplrflow/driver"
)

const extensionsPage = "chrome://extensions"

const listExtensionsScript = `async () => {
	const all = await chrome.management.getAll();
	return all.map(e => ({ name: e.name, id: e.id, version: e.version }));
}`

// ExtensionsData lists installed extensions from the chrome://extensions page, keyed by lower-cased name.
func (d *Driver) ExtensionsData(ctx context.Context) (map[string]driver.ExtensionData, error) {
	bctx, err := d.browserContext()
	if err != nil {
		return nil, err
	}

	page, err := bctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("opening extensions page: %w", err)
	}
	defer page.Close()

	if _, err := page.Goto(extensionsPage, playwright.PageGotoOptions{
		Timeout: timeout(ctx, d.options.Timeout),
	}); err != nil {
		return nil, mapError(err, extensionsPage)
	}

	result, err := page.Evaluate(listExtensionsScript)
	if err != nil {
		return nil, fmt.Errorf("listing extensions: %w", err)
	}
	return parseExtensions(result)
}

// parseExtensions converts the evaluated extension list
func parseExtensions(result any) (map[string]driver.ExtensionData, error) {
	items, ok := result.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected extension list %T", result)
	}

	extensions := make([]driver.ExtensionData, 0, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected extension entry %T", item)
		}
		name, _ := fields["name"].(string)
		id, _ := fields["id"].(string)
		version, _ := fields["version"].(string)
		extensions = append(extensions, driver.ExtensionData{Name: name, ID: id, Version: version})
	}

	return lo.KeyBy(extensions, func(e driver.ExtensionData) string {
		return strings.ToLower(e.Name)
	}), nil
}
