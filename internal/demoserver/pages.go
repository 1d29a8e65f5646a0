package demoserver

import "html/template"

var pageFuncs = template.FuncMap{
	"symbol": symbol,
	"rupees": rupees,
}

func page(name, body string) *template.Template {
	return template.Must(template.New(name).Funcs(pageFuncs).Parse(body))
}

var storeIndexTmpl = page("store-index", `<!DOCTYPE html>
<html>
<head><title>Demo Marketplace</title></head>
<body>
    <h1>Demo Marketplace</h1>
    <ul class="products">
    {{range .}}
        <li><a href="/{{.Slug}}/dp/{{.ASIN}}">{{.Title}}</a></li>
    {{end}}
    </ul>
    <p><a href="/demo/control">Control panel</a></p>
</body>
</html>`)

var listingTmpl = page("listing", `<!DOCTYPE html>
<html>
<head>
    <title>Demo Marketplace</title>
    {{if .Scenario.Listed}}<meta property="og:title" content="{{.Product.Title}}">{{end}}
</head>
<body>
{{if .Scenario.Listed}}
    <div id="centerCol">
        <h1 id="title"><span id="productTitle">{{.Product.Title}}</span></h1>
        <div id="corePrice">
            <span class="a-price">
                <span class="a-price-symbol">₹</span><span class="a-price-whole">{{rupees .Scenario.Price}}.</span>
            </span>
        </div>
        <div id="availability">In stock</div>
    </div>
{{else}}
    <div id="dp-unavailable">
        <h2>Looking for something?</h2>
        <p>We're sorry. The Web address you entered is not a functioning page on our site.</p>
    </div>
{{end}}
</body>
</html>`)

var botWallTmpl = page("bot-wall", `<!DOCTYPE html>
<html>
<head><title>Sorry! Something went wrong!</title></head>
<body>
    <h4>Enter the characters you see below</h4>
    <p>Sorry, we just need to make sure you're not a robot.</p>
</body>
</html>`)

var historySearchTmpl = page("history-search", `<!DOCTYPE html>
<html>
<head><title>Price History Search</title></head>
<body>
    <div class="search-results">
    {{range .}}
        <div class="result">
            <a href="/product/{{.Product.Slug}}">{{.Product.Title}}</a>
            <span class="current">{{symbol .Scenario.Price}}</span>
        </div>
    {{else}}
        <p class="empty">No products found</p>
    {{end}}
    </div>
</body>
</html>`)

var historyProductTmpl = page("history-product", `<!DOCTYPE html>
<html>
<head><title>{{.Product.Title}} Price History</title></head>
<body>
    <h1>{{.Product.Title}}</h1>
    <section class="price-stats">
        <div class="stat"><span>Current Price</span> <strong>{{symbol .Scenario.Price}}</strong></div>
        <div class="stat"><span>Lowest Price</span> <strong>{{symbol .Scenario.Lowest}}</strong></div>
        <div class="stat"><span>Average Price</span> <strong>{{symbol .Scenario.Average}}</strong></div>
    </section>
</body>
</html>`)

var flipkartSearchTmpl = page("flipkart-search", `<!DOCTYPE html>
<html>
<head><title>Flipkart Search</title></head>
<body>
    <div id="container">
    {{range .}}{{if .Scenario.Flipkart}}
        <div data-id="{{.Product.ASIN}}">
            <a href="/{{.Product.Slug}}/p/itm{{.Product.ASIN}}">
                <div class="KzDlHZ">{{.Product.Title}}</div>
                <div class="Nx9bqj">{{symbol .Scenario.Flipkart}}</div>
            </a>
        </div>
    {{end}}{{end}}
    </div>
</body>
</html>`)

var cromaSearchTmpl = page("croma-search", `<!DOCTYPE html>
<html>
<head><title>Croma Search</title></head>
<body>
    <ul class="product-list">
    {{range .}}{{if .Scenario.Croma}}
        <li class="product-item">
            <h3 class="product-title"><a href="/{{.Product.Slug}}/p/{{.Product.ASIN}}">{{.Product.Title}}</a></h3>
            <span class="amount">{{symbol .Scenario.Croma}}</span>
        </li>
    {{end}}{{end}}
    </ul>
</body>
</html>`)

var controlPanelTmpl = page("control", `<!DOCTYPE html>
<html>
<head>
    <title>Demo Control Panel</title>
    <style>
        body { font-family: system-ui, -apple-system, sans-serif; max-width: 1000px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
        .card { background: white; border-radius: 8px; padding: 20px; margin: 15px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .current { font-weight: bold; color: #28a745; }
        button { padding: 8px 14px; margin: 4px; border: none; border-radius: 4px; cursor: pointer; }
        button.active { background: #007bff; color: white; }
        dt { font-weight: bold; }
    </style>
</head>
<body>
    <h1>Demo Control Panel</h1>
    <p>Switch a product's scenario, then scan its listing link.</p>
    <button onclick="post('/demo/reset', '')">Reset all</button>
    {{range .Products}}
    <div class="card" data-asin="{{.ASIN}}">
        <h2>{{.Title}}</h2>
        <p><code>{{.Listing}}</code> <span class="current">{{.Scenario}}</span></p>
        {{$asin := .ASIN}}{{$current := .Scenario}}
        {{range .Available}}
        <button class="{{if eq . $current}}active{{end}}" onclick="post('/demo/scenario', 'asin={{$asin}}&scenario={{.}}')">{{.}}</button>
        {{end}}
    </div>
    {{end}}
    <dl>
    {{range $name, $desc := .Descriptions}}
        <dt>{{$name}}</dt><dd>{{$desc}}</dd>
    {{end}}
    </dl>
    <script>
        function post(path, body) {
            fetch(path, {
                method: 'POST',
                headers: {'Content-Type': 'application/x-www-form-urlencoded'},
                body: body
            }).then(() => location.reload());
        }
    </script>
</body>
</html>`)
